package cache

import (
	"context"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	basecache "github.com/felixbhw/n17-dash/internal/platform/cache"
)

const playerLinkListKey = "player-link:list"

// PlayerLinkRepository caches List for the identity and context lookups that
// run once per mention. Get always reads through, so load-merge-save never
// works on a cached copy.
type PlayerLinkRepository struct {
	next  playerlink.Repository
	cache *basecache.Store[[]playerlink.PlayerLink]
}

func NewPlayerLinkRepository(next playerlink.Repository, cache *basecache.Store[[]playerlink.PlayerLink]) *PlayerLinkRepository {
	return &PlayerLinkRepository{next: next, cache: cache}
}

func (r *PlayerLinkRepository) List(ctx context.Context) ([]playerlink.PlayerLink, error) {
	items, err := r.cache.GetOrLoad(ctx, playerLinkListKey, func(ctx context.Context) ([]playerlink.PlayerLink, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cloneLinks(items), nil
}

func (r *PlayerLinkRepository) Get(ctx context.Context, playerID string) (playerlink.PlayerLink, bool, error) {
	return r.next.Get(ctx, playerID)
}

func (r *PlayerLinkRepository) Save(ctx context.Context, link playerlink.PlayerLink) error {
	if err := r.next.Save(ctx, link); err != nil {
		return err
	}
	r.cache.Delete(ctx, playerLinkListKey)
	return nil
}

func cloneLinks(items []playerlink.PlayerLink) []playerlink.PlayerLink {
	out := make([]playerlink.PlayerLink, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
