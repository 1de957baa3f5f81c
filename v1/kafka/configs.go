package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultRequiredAcks = kafka.RequireAll
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 100 * time.Millisecond
	DefaultMaxAttempts  = 10
	DefaultWriteTimeout = 10 * time.Second
)

// Config defines the producer settings used to publish shard transfer events.
type Config struct {
	// Brokers is the list of bootstrap brokers, e.g. ["kafka-0:9092"].
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`

	// Topic receives one message per finished shard operation.
	Topic string `yaml:"topic" env:"KAFKA_TOPIC"`

	// RequiredAcks is the acknowledgement level; defaults to all in-sync replicas.
	RequiredAcks kafka.RequiredAcks `yaml:"required_acks" env:"KAFKA_REQUIRED_ACKS"`

	// Async makes Publish return before the broker acknowledged the batch.
	Async bool `yaml:"async" env:"KAFKA_ASYNC"`

	BatchSize    int           `yaml:"batch_size" env:"KAFKA_BATCH_SIZE"`
	BatchTimeout time.Duration `yaml:"batch_timeout" env:"KAFKA_BATCH_TIMEOUT"`
	MaxAttempts  int           `yaml:"max_attempts" env:"KAFKA_MAX_ATTEMPTS"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"KAFKA_WRITE_TIMEOUT"`

	// CompressionCodec is one of "gzip", "snappy", "lz4", "zstd" or empty for none.
	CompressionCodec string `yaml:"compression_codec" env:"KAFKA_COMPRESSION_CODEC"`

	TLS  TLSConfig  `yaml:"tls"`
	SASL SASLConfig `yaml:"sasl"`

	// Logger receives kafka-go internal errors. Injected by the FX module.
	Logger Logger `yaml:"-"`
}

// TLSConfig configures TLS towards the brokers.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" env:"KAFKA_TLS_ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" env:"KAFKA_TLS_CA_CERT_PATH"`
	ClientCertPath     string `yaml:"client_cert_path" env:"KAFKA_TLS_CLIENT_CERT_PATH"`
	ClientKeyPath      string `yaml:"client_key_path" env:"KAFKA_TLS_CLIENT_KEY_PATH"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" env:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig configures SASL authentication. Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
type SASLConfig struct {
	Enabled   bool   `yaml:"enabled" env:"KAFKA_SASL_ENABLED"`
	Mechanism string `yaml:"mechanism" env:"KAFKA_SASL_MECHANISM"`
	Username  string `yaml:"username" env:"KAFKA_SASL_USERNAME"`
	Password  string `yaml:"password" env:"KAFKA_SASL_PASSWORD"`
}

func (c Config) withDefaults() Config {
	if c.RequiredAcks == 0 {
		c.RequiredAcks = DefaultRequiredAcks
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}
