package codec

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/snapkeep/internal/adapters/config"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
)

// NodeID is the unique identifier for the codec Graft node.
const NodeID graft.ID = "adapter.codec"

func init() {
	graft.Register(graft.Node[ports.Codec]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.Codec, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewGzip(cfg.Store.CompressionLevel)
		},
	})
}
