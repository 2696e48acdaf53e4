package settings

import (
	"context"

	domain "photocontest/internal/domain/settings"
)

// Store loads and saves the runtime settings document.
type Store interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}
