package cluster

import "time"

// Config holds execution settings shared by every compound operation.
//
// Example (builder style):
//
//	cfg := cluster.DefaultConfig().
//	    WithMaxConcurrentTransfers(2).
//	    WithTransferTimeout(30 * time.Minute)
type Config struct {
	// Maximum number of shards transferred at the same time.
	MaxConcurrentTransfers int `yaml:"max_concurrent_transfers" env:"CLUSTER_MAX_CONCURRENT_TRANSFERS"`

	// How often the shard layout is polled while awaiting a transfer.
	TransferPollInterval time.Duration `yaml:"transfer_poll_interval" env:"CLUSTER_TRANSFER_POLL_INTERVAL"`

	// Upper bound for a single transfer to complete before it is reported as timed out.
	TransferTimeout time.Duration `yaml:"transfer_timeout" env:"CLUSTER_TRANSFER_TIMEOUT"`

	// Await completion of every copy, not only of copies followed by another step on the same shard.
	AwaitTransfers bool `yaml:"await_transfers" env:"CLUSTER_AWAIT_TRANSFERS"`

	// Transfer method used when an operation does not name one.
	DefaultTransferMethod TransferMethod `yaml:"default_transfer_method" env:"CLUSTER_DEFAULT_TRANSFER_METHOD"`

	// Defaults for EnsureReady.
	Readiness ReadinessOptions `yaml:"readiness"`
}

// DefaultConfig returns the settings used when no configuration is supplied.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrentTransfers: 4,
		TransferPollInterval:   time.Second,
		TransferTimeout:        10 * time.Minute,
		AwaitTransfers:         false,
		DefaultTransferMethod:  TransferMethodStreamRecords,
		Readiness:              DefaultReadinessOptions(),
	}
}

func (c *Config) WithMaxConcurrentTransfers(n int) *Config {
	c.MaxConcurrentTransfers = n
	return c
}

func (c *Config) WithTransferPollInterval(d time.Duration) *Config {
	c.TransferPollInterval = d
	return c
}

func (c *Config) WithTransferTimeout(d time.Duration) *Config {
	c.TransferTimeout = d
	return c
}

func (c *Config) WithAwaitTransfers(enabled bool) *Config {
	c.AwaitTransfers = enabled
	return c
}

func (c *Config) WithDefaultTransferMethod(m TransferMethod) *Config {
	c.DefaultTransferMethod = m
	return c
}

func (c *Config) WithReadiness(opts ReadinessOptions) *Config {
	c.Readiness = opts
	return c
}

// normalized fills zero values with defaults without mutating c.
func (c *Config) normalized() Config {
	def := DefaultConfig()
	if c == nil {
		return *def
	}
	out := *c
	if out.MaxConcurrentTransfers <= 0 {
		out.MaxConcurrentTransfers = def.MaxConcurrentTransfers
	}
	if out.TransferPollInterval <= 0 {
		out.TransferPollInterval = def.TransferPollInterval
	}
	if out.TransferTimeout <= 0 {
		out.TransferTimeout = def.TransferTimeout
	}
	out.Readiness = out.Readiness.withDefaults()
	return out
}
