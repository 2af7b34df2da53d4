package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonkayzk/respool/pool"
)

func TestLoad(t *testing.T) {
	doc := `
name: workers
min: 2
max: 8
idle_timeout_millis: 5000
reap_interval_millis: 250
priority_range: 3
refresh_idle: false
`
	c, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "workers", c.Name)
	assert.Equal(t, 2, c.Min)
	assert.Equal(t, 8, c.Max)
	assert.Equal(t, 5000, c.IdleTimeoutMillis)
	assert.Equal(t, 250, c.ReapIntervalMillis)
	assert.Equal(t, 3, c.PriorityRange)
	require.NotNil(t, c.RefreshIdle)
	assert.False(t, *c.RefreshIdle)

	o := c.Options()
	assert.Equal(t, 5*time.Second, o.IdleTimeout)
	assert.Equal(t, 250*time.Millisecond, o.ReapInterval)
}

func TestLoadMalformedNumerics(t *testing.T) {
	doc := `
name: sloppy
min: banana
max: .nan
idle_timeout_millis: .inf
priority_range: -2
`
	c, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "sloppy", c.Name)
	assert.Equal(t, 0, c.Min)
	assert.Equal(t, 0, c.Max)
	assert.Equal(t, 0, c.IdleTimeoutMillis)

	// the pool turns the zero values into its defaults
	o := c.Options()
	o.Create = pool.SyncFactory(func() (interface{}, error) {
		return new(int), nil
	})
	o.Destroy = func(resource interface{}) error {
		return nil
	}
	p, err := pool.New(o)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Min())
	assert.Equal(t, 1, p.Max())
	p.DestroyAllNow(nil)
}

func TestFromMapWeakTyping(t *testing.T) {
	c := FromMap(map[string]interface{}{
		"name": "weak",
		"min":  "1",
		"max":  "4",
	})
	assert.Equal(t, "weak", c.Name)
	assert.Equal(t, 1, c.Min)
	assert.Equal(t, 4, c.Max)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does/not/exist.yaml")
	assert.Error(t, err)
}
