package qdrant

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds connection settings for the Qdrant cluster client.
//
// It can be loaded from YAML or environment variables, or built programmatically.
//
// Example (builder style):
//
//	cfg := qdrant.FromEndpoint("qdrant-0.qdrant-headless").
//	    WithApiKey(os.Getenv("QDRANT_API_KEY")).
//	    WithTLS(true).
//	    WithTimeout(30 * time.Second)
type Config struct {
	// Hostname of the Qdrant peer the client talks to, e.g. "localhost".
	Endpoint string `yaml:"endpoint" env:"QDRANT_ENDPOINT"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" env:"QDRANT_PORT"`

	// REST port, used for the cluster topology. Defaults to 6333.
	RestPort int `yaml:"rest_port" env:"QDRANT_REST_PORT"`

	// Use TLS for both gRPC and REST.
	UseTLS bool `yaml:"use_tls" env:"QDRANT_USE_TLS"`

	// Optional authentication token for secured deployments.
	ApiKey string `yaml:"api_key" env:"QDRANT_API_KEY"`

	// Maximum duration of a single remote call.
	Timeout time.Duration `yaml:"timeout" env:"QDRANT_TIMEOUT"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               6334,
		RestPort:           6333,
		Timeout:            10 * time.Second,
		CheckCompatibility: true,
	}
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

// Builder-style helpers
func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithPorts(grpcPort, restPort int) *Config {
	c.Port = grpcPort
	c.RestPort = restPort
	return c
}

func (c *Config) WithTLS(enabled bool) *Config {
	c.UseTLS = enabled
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}

func (c *Config) grpcPort() int {
	if c.Port == 0 {
		return 6334
	}
	return c.Port
}

func (c *Config) restBaseURL() string {
	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}
	port := c.RestPort
	if port == 0 {
		port = 6333
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(c.Endpoint, strconv.Itoa(port)))
}
