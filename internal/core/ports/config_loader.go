package ports

import "go.trai.ch/snapkeep/internal/core/domain"

// ConfigLoader defines the interface for loading the service configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path, if any, and applies environment overrides.
	Load(path string) (*domain.Config, error)
	// Path reports where the configuration file is expected.
	Path() string
}
