package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/core/domain"
)

const (
	// NodeID is the unique identifier for the config loader Graft node.
	NodeID graft.ID = "adapter.config_loader"
	// ConfigNodeID is the unique identifier for the loaded configuration.
	ConfigNodeID graft.ID = "adapter.config"
)

func init() {
	graft.Register(graft.Node[*FileConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*FileConfigLoader, error) {
			return NewLoader(), nil
		},
	})

	graft.Register(graft.Node[*domain.Config]{
		ID:        ConfigNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (*domain.Config, error) {
			loader, err := graft.Dep[*FileConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			return Resolve(loader)
		},
	})
}
