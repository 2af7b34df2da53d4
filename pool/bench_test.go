package pool

import (
	"context"
	"testing"
	"time"
)

func BenchmarkDo(b *testing.B) {
	p, err := New(Options{
		Name:        "bench",
		Min:         4,
		Max:         4,
		IdleTimeout: time.Minute,
		Create:      nopCreate,
		Destroy:     nopDestroy,
	})
	if err != nil {
		b.Fatalf("New error: %s", err)
	}
	defer p.DestroyAllNow(nil)

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Do(ctx, func(resource interface{}) error {
			return nil
		})
	}
}
