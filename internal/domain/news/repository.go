package news

import (
	"context"
	"errors"
)

var (
	ErrDuplicate = errors.New("news item already exists")
	ErrNotFound  = errors.New("news item not found")
)

// Repository stores news items and tracks which ones the linker already
// consumed or gave up on.
type Repository interface {
	// Add returns ErrDuplicate when the id is already stored.
	Add(ctx context.Context, item Item) error
	Get(ctx context.Context, id string) (Item, bool, error)
	// ListUnprocessedIDs returns ids in ascending order, excluding processed
	// and failed items.
	ListUnprocessedIDs(ctx context.Context) ([]string, error)
	// MarkProcessed returns ErrNotFound for unknown ids.
	MarkProcessed(ctx context.Context, id string) error
	IsProcessed(ctx context.Context, id string) (bool, error)
	// RecordRejection counts one unusable extraction and returns the total.
	// It returns ErrNotFound for unknown ids.
	RecordRejection(ctx context.Context, id string) (int, error)
	// MarkFailed is terminal; a failed item is never listed again. It returns
	// ErrNotFound for unknown ids.
	MarkFailed(ctx context.Context, id string) error
	IsFailed(ctx context.Context, id string) (bool, error)
}
