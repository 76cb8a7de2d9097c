package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixbhw/n17-dash/internal/domain/news"
)

type NewsRepository struct {
	mu         sync.RWMutex
	items      map[string]news.Item
	processed  map[string]struct{}
	rejections map[string]int
	failed     map[string]struct{}
}

func NewNewsRepository(items ...news.Item) *NewsRepository {
	r := &NewsRepository{
		items:      make(map[string]news.Item, len(items)),
		processed:  make(map[string]struct{}),
		rejections: make(map[string]int),
		failed:     make(map[string]struct{}),
	}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *NewsRepository) Add(_ context.Context, item news.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("%w: %s", news.ErrDuplicate, item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *NewsRepository) Get(_ context.Context, id string) (news.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *NewsRepository) ListUnprocessedIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for id := range r.items {
		if _, done := r.processed[id]; done {
			continue
		}
		if _, failed := r.failed[id]; failed {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (r *NewsRepository) MarkProcessed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", news.ErrNotFound, id)
	}
	r.processed[id] = struct{}{}
	return nil
}

func (r *NewsRepository) IsProcessed(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.processed[id]
	return ok, nil
}

func (r *NewsRepository) RecordRejection(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return 0, fmt.Errorf("%w: %s", news.ErrNotFound, id)
	}
	r.rejections[id]++
	return r.rejections[id], nil
}

func (r *NewsRepository) MarkFailed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", news.ErrNotFound, id)
	}
	r.failed[id] = struct{}{}
	return nil
}

func (r *NewsRepository) IsFailed(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.failed[id]
	return ok, nil
}
