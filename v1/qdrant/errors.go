package qdrant

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNotConnected is returned when the client is used before NewQdrantClient succeeded or after Close.
	ErrNotConnected = errors.New("[Qdrant] client not connected")

	// ErrClusterDisabled is returned by GetClusterTopology when the peer runs without distributed mode.
	ErrClusterDisabled = errors.New("[Qdrant] distributed mode is disabled")
)

// IsClusterDisabledError reports whether err means the server is not part of a cluster.
func IsClusterDisabledError(err error) bool {
	return errors.Is(err, ErrClusterDisabled)
}

// mapError wraps a remote error with the operation name and maps gRPC NotFound
// to cluster.ErrCollectionNotFound.
func mapError(err error, operation, collection string) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return fmt.Errorf("[Qdrant] %s %q: %w: %s", operation, collection, cluster.ErrCollectionNotFound, st.Message())
	}
	return fmt.Errorf("[Qdrant] %s %q: %w", operation, collection, err)
}
