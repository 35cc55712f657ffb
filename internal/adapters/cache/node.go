package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/config"
	"go.trai.ch/snapkeep/internal/adapters/logger"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
)

// NodeID is the unique identifier for the cache backend Graft node.
const NodeID graft.ID = "adapter.cache"

func init() {
	graft.Register(graft.Node[ports.CacheBackend]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CacheBackend, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Cache, log)
		},
	})
}

// New builds the tier selected by cfg.Tier.
func New(cfg domain.CacheConfig, log ports.Logger) (ports.CacheBackend, error) {
	if cfg.Tier == domain.CacheTierRemote {
		return NewRedis(RedisOptions{
			URL:             cfg.URL,
			Prefix:          cfg.Prefix,
			ConnectAttempts: cfg.ConnectAttempts,
			InitialBackoff:  cfg.InitialBackoff,
		}, log)
	}
	return NewMemory(log), nil
}
