package amqp

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/config"
	"go.trai.ch/snapkeep/internal/core/domain"
)

// NodeID is the unique identifier for the RabbitMQ broker Graft node.
const NodeID graft.ID = "adapter.amqp"

func init() {
	graft.Register(graft.Node[*Broker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (*Broker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewBroker(cfg.Broker.URL), nil
		},
	})
}
