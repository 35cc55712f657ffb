package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/snapkeep/internal/adapters/filestore" //nolint:depguard // Wired in app layer
	"go.trai.ch/snapkeep/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/snapkeep/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/snapkeep/internal/engine/consumer"
	"go.trai.ch/snapkeep/internal/engine/tiered"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			consumer.NodeID,
			tiered.NodeID,
			filestore.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
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
			return NewComponents(app, log, tracer), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	c, err := graft.Dep[*consumer.Consumer](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[*tiered.Cache](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ContentStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(c, cache, store, log, cfg.Broker.WriteQueue), nil
}
