package example

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jasonkayzk/respool/pool"
)

func newRedisPool(t *testing.T, addr string) pool.Pool {
	t.Helper()
	p, err := pool.New(pool.Options{
		Name:        "redis",
		Min:         1,
		Max:         4,
		IdleTimeout: time.Minute,
		Create: pool.SyncFactory(func() (interface{}, error) {
			return redis.NewClient(&redis.Options{Addr: addr}), nil
		}),
		Destroy: func(resource interface{}) error {
			return resource.(*redis.Client).Close()
		},
		Validate: func(resource interface{}) bool {
			return resource.(*redis.Client).Ping(context.Background()).Err() == nil
		},
	})
	if err != nil {
		t.Fatalf("New error: %s", err)
	}
	return p
}

func TestRedisPool(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis error: %s", err)
	}
	defer s.Close()

	p := newRedisPool(t, s.Addr())

	ctx := context.Background()
	err = p.Do(ctx, func(resource interface{}) error {
		return resource.(*redis.Client).Set(ctx, "greeting", "hello", 0).Err()
	})
	if err != nil {
		t.Fatalf("set err: %s", err)
	}

	var got string
	err = p.Do(ctx, func(resource interface{}) error {
		var err error
		got, err = resource.(*redis.Client).Get(ctx, "greeting").Result()
		return err
	})
	if err != nil {
		t.Fatalf("get err: %s", err)
	}
	if got != "hello" {
		t.Errorf("get result. Expecting hello, got %s", got)
	}

	done := make(chan struct{})
	p.DestroyAllNow(func() {
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("DestroyAllNow did not complete")
	}
}

func TestRedisPoolConcurrent(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis error: %s", err)
	}
	defer s.Close()

	p := newRedisPool(t, s.Addr())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				err := p.Do(ctx, func(resource interface{}) error {
					return resource.(*redis.Client).Incr(ctx, "counter").Err()
				})
				if err != nil {
					t.Errorf("incr err: %s", err)
				}
			}
		}()
	}
	wg.Wait()

	var total string
	err = p.Do(ctx, func(resource interface{}) error {
		var err error
		total, err = resource.(*redis.Client).Get(ctx, "counter").Result()
		return err
	})
	if err != nil {
		t.Fatalf("get err: %s", err)
	}
	if total != "100" {
		t.Errorf("counter. Expecting 100, got %s", total)
	}
	if p.Count() > p.Max() {
		t.Errorf("count %d exceeds max %d", p.Count(), p.Max())
	}

	drained := make(chan struct{})
	p.Drain(func() {
		close(drained)
	})
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatalf("drain did not complete")
	}
	if got := p.AvailableCount(); got != 0 {
		t.Errorf("available after drain. Expecting 0, got %d", got)
	}
}
