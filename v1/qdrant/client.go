package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// QdrantClient wraps the official Qdrant Go client and exposes the cluster
// management calls needed by the compound operations. It implements
// cluster.Directory.
//
// Collection and shard calls use gRPC. The peer list is only exposed over
// REST, so GetClusterTopology issues GET /cluster.
type QdrantClient struct {
	api     *qdrant.Client
	http    *http.Client
	cfg     *Config
	logger  Logger
	started bool
}

var _ cluster.Directory = (*QdrantClient)(nil)

// NewQdrantClient ──────────────────────────────────────────────────────────────
// NewQdrantClient
// ──────────────────────────────────────────────────────────────
//
// NewQdrantClient constructs a client and validates connectivity via a health
// check, so an unreachable peer fails at startup.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{Config: cfg, Logger: log})
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var log Logger = nopLogger{}
	if p.Logger != nil {
		log = p.Logger
	}

	log.Info("[Qdrant] connecting", nil, map[string]interface{}{
		"endpoint":  cfg.Endpoint,
		"port":      cfg.grpcPort(),
		"rest_port": cfg.RestPort,
		"tls":       cfg.UseTLS,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   cfg.grpcPort(),
		APIKey:                 cfg.ApiKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.UseTLS {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	qc := &QdrantClient{
		api:     client,
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		cfg:     cfg,
		logger:  log,
		started: true,
	}

	if err := qc.healthCheck(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("[Qdrant] client connected", nil, map[string]interface{}{"endpoint": cfg.Endpoint})
	return qc, nil
}

// healthCheck verifies the availability of the Qdrant service.
func (c *QdrantClient) healthCheck() error {
	if !c.started || c.api == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	c.logger.Debug("[Qdrant] health check passed", nil, map[string]interface{}{
		"title":    resp.GetTitle(),
		"version":  resp.GetVersion(),
		"endpoint": c.cfg.Endpoint,
	})
	return nil
}

// Client returns the underlying Qdrant SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Close releases the gRPC connection. It is safe to call more than once.
func (c *QdrantClient) Close() error {
	if !c.started {
		return nil
	}
	c.started = false
	c.http.CloseIdleConnections()
	if err := c.api.Close(); err != nil {
		return fmt.Errorf("[Qdrant] failed to close client: %w", err)
	}
	c.logger.Info("[Qdrant] client closed", nil)
	return nil
}

// callContext bounds a single remote call by Config.Timeout.
func (c *QdrantClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
