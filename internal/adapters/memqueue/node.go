package memqueue

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the in-process broker Graft node.
const NodeID graft.ID = "adapter.memqueue"

func init() {
	graft.Register(graft.Node[*Broker]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Broker, error) {
			return NewBroker(), nil
		},
	})
}
