package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
)

type PlayerLinkRepository struct {
	mu    sync.RWMutex
	items map[string]playerlink.PlayerLink
}

func NewPlayerLinkRepository(links ...playerlink.PlayerLink) *PlayerLinkRepository {
	items := make(map[string]playerlink.PlayerLink, len(links))
	for _, link := range links {
		items[link.PlayerID] = link.Clone()
	}
	return &PlayerLinkRepository{items: items}
}

func (r *PlayerLinkRepository) List(_ context.Context) ([]playerlink.PlayerLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerlink.PlayerLink, 0, len(r.items))
	for _, link := range r.items {
		out = append(out, link.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *PlayerLinkRepository) Get(_ context.Context, playerID string) (playerlink.PlayerLink, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.items[playerID]
	if !ok {
		return playerlink.PlayerLink{}, false, nil
	}
	return link.Clone(), true, nil
}

func (r *PlayerLinkRepository) Save(_ context.Context, link playerlink.PlayerLink) error {
	if err := link.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[link.PlayerID] = link.Clone()
	return nil
}
