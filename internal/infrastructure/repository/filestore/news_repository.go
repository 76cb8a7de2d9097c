package filestore

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/domain/news"
)

type newsRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tier      int       `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

type processedRecord struct {
	NewsID      string    `json:"news_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

type failureRecord struct {
	NewsID     string     `json:"news_id"`
	Rejections int        `json:"rejections"`
	FailedAt   *time.Time `json:"failed_at"`
}

type NewsRepository struct {
	store *Store
	mu    sync.Mutex
	now   func() time.Time
}

func NewNewsRepository(store *Store) *NewsRepository {
	return &NewsRepository{store: store, now: time.Now}
}

func (r *NewsRepository) Add(_ context.Context, item news.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.store.exists(newsDir, item.ID)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(news.ErrDuplicate, "%s", item.ID)
	}
	return r.store.writeJSON(newsDir, item.ID, newsRecord{
		ID:        item.ID,
		Source:    item.Source,
		URL:       item.URL,
		Title:     item.Title,
		Content:   item.Body,
		Tier:      int(item.Tier),
		CreatedAt: item.CreatedAt.UTC(),
	})
}

func (r *NewsRepository) Get(_ context.Context, id string) (news.Item, bool, error) {
	var rec newsRecord
	ok, err := r.store.readJSON(newsDir, id, &rec)
	if err != nil || !ok {
		return news.Item{}, false, err
	}
	return news.Item{
		ID:        id,
		Source:    rec.Source,
		URL:       rec.URL,
		Title:     rec.Title,
		Body:      rec.Content,
		Tier:      news.Tier(rec.Tier),
		CreatedAt: rec.CreatedAt,
	}, true, nil
}

func (r *NewsRepository) ListUnprocessedIDs(_ context.Context) ([]string, error) {
	ids, err := r.store.keys(newsDir)
	if err != nil {
		return nil, err
	}
	done, err := r.store.keys(processedDir)
	if err != nil {
		return nil, err
	}
	processed := make(map[string]struct{}, len(done))
	for _, id := range done {
		processed[id] = struct{}{}
	}
	failed, err := r.failedIDs()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		_, isDone := processed[id]
		_, isFailed := failed[id]
		if !isDone && !isFailed {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *NewsRepository) MarkProcessed(_ context.Context, id string) error {
	exists, err := r.store.exists(newsDir, id)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(news.ErrNotFound, "%s", id)
	}
	return r.store.writeJSON(processedDir, id, processedRecord{NewsID: id, ProcessedAt: r.now().UTC()})
}

func (r *NewsRepository) IsProcessed(_ context.Context, id string) (bool, error) {
	return r.store.exists(processedDir, id)
}

func (r *NewsRepository) RecordRejection(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.failure(id)
	if err != nil {
		return 0, err
	}
	rec.Rejections++
	if err := r.store.writeJSON(failuresDir, id, rec); err != nil {
		return 0, err
	}
	return rec.Rejections, nil
}

func (r *NewsRepository) MarkFailed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.failure(id)
	if err != nil {
		return err
	}
	if rec.FailedAt == nil {
		at := r.now().UTC()
		rec.FailedAt = &at
	}
	return r.store.writeJSON(failuresDir, id, rec)
}

func (r *NewsRepository) IsFailed(_ context.Context, id string) (bool, error) {
	var rec failureRecord
	ok, err := r.store.readJSON(failuresDir, id, &rec)
	if err != nil || !ok {
		return false, err
	}
	return rec.FailedAt != nil, nil
}

// failure loads the rejection record of a stored item, or a fresh one.
func (r *NewsRepository) failure(id string) (failureRecord, error) {
	exists, err := r.store.exists(newsDir, id)
	if err != nil {
		return failureRecord{}, err
	}
	if !exists {
		return failureRecord{}, errors.Wrapf(news.ErrNotFound, "%s", id)
	}
	rec := failureRecord{NewsID: id}
	if _, err := r.store.readJSON(failuresDir, id, &rec); err != nil {
		return failureRecord{}, err
	}
	return rec, nil
}

func (r *NewsRepository) failedIDs() (map[string]struct{}, error) {
	ids, err := r.store.keys(failuresDir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		var rec failureRecord
		ok, err := r.store.readJSON(failuresDir, id, &rec)
		if err != nil {
			return nil, err
		}
		if ok && rec.FailedAt != nil {
			out[id] = struct{}{}
		}
	}
	return out, nil
}
