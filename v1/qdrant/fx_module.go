package qdrant

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides *QdrantClient, also exposed as cluster.Directory, and closes it on stop.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    cluster.FXModule,
//	    fx.Provide(func() *qdrant.Config { return qdrant.DefaultConfig() }),
//	)
var FXModule = fx.Module("qdrant",
	fx.Provide(
		fx.Annotate(
			NewQdrantClient,
			fx.As(fx.Self()),
			fx.As(new(cluster.Directory)),
		),
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams groups the dependencies needed to create a QdrantClient.
type QdrantParams struct {
	fx.In

	Config *Config
	Logger logger.Logger `optional:"true"`
}

// QdrantLifecycleParams groups the dependencies of RegisterQdrantLifecycle.
type QdrantLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *QdrantClient
}

// RegisterQdrantLifecycle closes the client when the application stops.
func RegisterQdrantLifecycle(p QdrantLifecycleParams) {
	var once sync.Once
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var err error
			once.Do(func() {
				err = p.Client.Close()
			})
			return err
		},
	})
}
