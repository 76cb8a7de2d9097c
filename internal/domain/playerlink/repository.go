package playerlink

import "context"

// Repository describes player link persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]PlayerLink, error)
	Get(ctx context.Context, playerID string) (PlayerLink, bool, error)
	// Save replaces the whole record atomically.
	Save(ctx context.Context, link PlayerLink) error
}
