package ranking

import "runtime"

// Config holds the tuning knobs of the ranking engine.
type Config struct {
	// ShardSize is the number of candidate rows scored by one worker task.
	ShardSize int `yaml:"shard_size"` // default: 4096
	// Workers bounds the number of concurrent scoring goroutines.
	Workers int `yaml:"workers"` // default: GOMAXPROCS
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		ShardSize: 4096,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// ApplyDefaults fills in zero or negative values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.ShardSize <= 0 {
		c.ShardSize = defaults.ShardSize
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
}
