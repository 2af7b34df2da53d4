// Package config loads pool options from YAML documents or generic maps, the
// way they arrive when a pool definition is one section of a larger service
// config. Values that are missing, malformed or non-finite fall back to the
// pool defaults instead of failing the load.
package config

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jasonkayzk/respool/pool"
)

// PoolConfig mirrors the numeric and naming knobs of pool.Options in the
// wire-friendly millisecond form.
type PoolConfig struct {
	Name               string `yaml:"name" mapstructure:"name"`
	Min                int    `yaml:"min" mapstructure:"min"`
	Max                int    `yaml:"max" mapstructure:"max"`
	IdleTimeoutMillis  int    `yaml:"idle_timeout_millis" mapstructure:"idle_timeout_millis"`
	ReapIntervalMillis int    `yaml:"reap_interval_millis" mapstructure:"reap_interval_millis"`
	PriorityRange      int    `yaml:"priority_range" mapstructure:"priority_range"`
	RefreshIdle        *bool  `yaml:"refresh_idle" mapstructure:"refresh_idle"`
}

// Load reads one YAML document describing a pool.
func Load(r io.Reader) (*PoolConfig, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return FromMap(m), nil
}

// LoadFile is Load over a file path.
func LoadFile(path string) (*PoolConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// FromMap decodes a generic map into a PoolConfig. Fields that do not decode
// keep their zero value and are later replaced by pool defaults, so a stray
// string where a number belongs cannot fail the whole section.
func FromMap(m map[string]interface{}) *PoolConfig {
	c := &PoolConfig{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c
	}
	if err := dec.Decode(m); err != nil {
		log.Debugf("pool config decode: %v", err)
	}
	c.dropNonFinite(m)
	return c
}

// dropNonFinite resets fields whose source value was NaN or infinite; weak
// decoding would otherwise let them through as garbage integers.
func (c *PoolConfig) dropNonFinite(m map[string]interface{}) {
	for key, field := range map[string]*int{
		"min":                  &c.Min,
		"max":                  &c.Max,
		"idle_timeout_millis":  &c.IdleTimeoutMillis,
		"reap_interval_millis": &c.ReapIntervalMillis,
		"priority_range":       &c.PriorityRange,
	} {
		if f, ok := m[key].(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			*field = 0
		}
	}
}

// Options converts the config into pool.Options. The factory callbacks still
// have to be filled in by the caller; clamping of out-of-range numerics is
// left to the pool itself.
func (c *PoolConfig) Options() pool.Options {
	return pool.Options{
		Name:          c.Name,
		Min:           c.Min,
		Max:           c.Max,
		IdleTimeout:   time.Duration(c.IdleTimeoutMillis) * time.Millisecond,
		ReapInterval:  time.Duration(c.ReapIntervalMillis) * time.Millisecond,
		PriorityRange: c.PriorityRange,
		RefreshIdle:   c.RefreshIdle,
	}
}
