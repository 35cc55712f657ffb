package tiered

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/cache"
	"go.trai.ch/snapkeep/internal/adapters/hash"
	"go.trai.ch/snapkeep/internal/adapters/logger"
	"go.trai.ch/snapkeep/internal/adapters/telemetry"
	"go.trai.ch/snapkeep/internal/core/ports"
)

// NodeID is the unique identifier for the tiered cache Graft node.
const NodeID graft.ID = "engine.tiered"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cache.NodeID, hash.HasherNodeID, logger.NodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*Cache, error) {
			backend, err := graft.Dep[ports.CacheBackend](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(backend, hasher, log, tracer), nil
		},
	})
}
