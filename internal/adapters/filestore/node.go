package filestore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/codec"
	"go.trai.ch/snapkeep/internal/adapters/config"
	"go.trai.ch/snapkeep/internal/adapters/hash"
	"go.trai.ch/snapkeep/internal/adapters/logger"
	"go.trai.ch/snapkeep/internal/adapters/telemetry"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
)

// NodeID is the unique identifier for the content store Graft node.
const NodeID graft.ID = "adapter.content_store"

func init() {
	graft.Register(graft.Node[ports.ContentStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			hash.HasherNodeID,
			codec.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (ports.ContentStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			c, err := graft.Dep[ports.Codec](ctx)
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
			return NewStore(Options{
				DataRoot:      cfg.DataRoot(),
				RootDataPath:  cfg.Store.RootDataPath,
				SpotTimeFrame: cfg.Store.SpotTimeFrame,
				UAT:           cfg.Store.UAT,
				AtomicWrites:  cfg.Store.AtomicWrites,
			}, hasher, c, log, tracer), nil
		},
	})
}
