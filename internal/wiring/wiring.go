// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/snapkeep/internal/adapters/amqp"
	_ "go.trai.ch/snapkeep/internal/adapters/cache"
	_ "go.trai.ch/snapkeep/internal/adapters/codec"
	_ "go.trai.ch/snapkeep/internal/adapters/config"
	_ "go.trai.ch/snapkeep/internal/adapters/filestore"
	_ "go.trai.ch/snapkeep/internal/adapters/hash"
	_ "go.trai.ch/snapkeep/internal/adapters/logger"
	_ "go.trai.ch/snapkeep/internal/adapters/memqueue"
	_ "go.trai.ch/snapkeep/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/snapkeep/internal/app"
	_ "go.trai.ch/snapkeep/internal/engine/consumer"
	_ "go.trai.ch/snapkeep/internal/engine/tiered"
)
