package qdrant

import (
	"errors"
	"testing"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "get collection info", "docs"))

	err := mapError(status.Error(codes.NotFound, "Collection `docs` doesn't exist!"), "get collection info", "docs")
	assert.ErrorIs(t, err, cluster.ErrCollectionNotFound)
	assert.Contains(t, err.Error(), `get collection info "docs"`)

	cause := status.Error(codes.Unavailable, "connection refused")
	err = mapError(cause, "drop replica", "docs")
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, cluster.ErrCollectionNotFound))
}

func TestConfigRestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:6333", DefaultConfig().restBaseURL())
	assert.Equal(t, "https://qdrant-0:7000", FromEndpoint("qdrant-0").WithTLS(true).WithPorts(7001, 7000).restBaseURL())
	assert.Equal(t, "http://[::1]:6333", (&Config{Endpoint: "::1"}).restBaseURL())
	assert.Equal(t, 6334, (&Config{}).grpcPort())
}

func TestConsensusTimeout(t *testing.T) {
	c := &QdrantClient{cfg: FromEndpoint("x").WithTimeout(1500 * time.Millisecond)}
	if assert.NotNil(t, c.consensusTimeout()) {
		assert.Equal(t, uint64(2), *c.consensusTimeout())
	}

	c.cfg.Timeout = 0
	assert.Nil(t, c.consensusTimeout())
}
