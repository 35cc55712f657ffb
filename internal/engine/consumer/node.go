package consumer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/amqp"
	"go.trai.ch/snapkeep/internal/adapters/config"
	"go.trai.ch/snapkeep/internal/adapters/logger"
	"go.trai.ch/snapkeep/internal/adapters/memqueue"
	"go.trai.ch/snapkeep/internal/adapters/telemetry"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
)

const (
	// BrokerNodeID is the unique identifier for the selected broker Graft node.
	BrokerNodeID graft.ID = "engine.broker"
	// NodeID is the unique identifier for the consumer Graft node.
	NodeID graft.ID = "engine.consumer"
)

func init() {
	graft.Register(graft.Node[ports.Broker]{
		ID:        BrokerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, amqp.NodeID, memqueue.NodeID},
		Run: func(ctx context.Context) (ports.Broker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			mem, err := graft.Dep[*memqueue.Broker](ctx)
			if err != nil {
				return nil, err
			}
			rabbit, err := graft.Dep[*amqp.Broker](ctx)
			if err != nil {
				return nil, err
			}
			if cfg.Broker.Driver == domain.BrokerDriverMemory {
				return mem, nil
			}
			return rabbit, nil
		},
	})

	graft.Register(graft.Node[*Consumer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, BrokerNodeID, logger.NodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*Consumer, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			broker, err := graft.Dep[ports.Broker](ctx)
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
			return New(broker, log, tracer, Options{
				Retries:      cfg.Broker.ConnectRetries,
				RetryDelay:   cfg.Broker.RetryDelay,
				PollInterval: cfg.Broker.PollInterval,
			}), nil
		},
	})
}
