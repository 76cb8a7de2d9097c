package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/felixbhw/n17-dash/internal/domain/news"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type NewsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db, now: time.Now}
}

func (r *NewsRepository) Add(ctx context.Context, item news.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := psql.Insert("news_items").
		Columns("id", "source", "url", "title", "content", "tier", "created_at").
		Values(item.ID, item.Source, item.URL, item.Title, item.Body, int(item.Tier), item.CreatedAt.UTC()).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert news item query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", news.ErrDuplicate, item.ID)
		}
		return fmt.Errorf("insert news item %s: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert news item %s rows affected: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", news.ErrDuplicate, item.ID)
	}
	return nil
}

func (r *NewsRepository) Get(ctx context.Context, id string) (news.Item, bool, error) {
	query, args, err := psql.Select("id", "source", "url", "title", "content", "tier", "created_at", "processed_at").
		From("news_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return news.Item{}, false, fmt.Errorf("build get news item query: %w", err)
	}

	var row newsItemTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return news.Item{}, false, nil
		}
		return news.Item{}, false, fmt.Errorf("get news item %s: %w", id, err)
	}

	return news.Item{
		ID:        row.ID,
		Source:    row.Source,
		URL:       row.URL,
		Title:     row.Title,
		Body:      row.Content,
		Tier:      news.Tier(row.Tier),
		CreatedAt: row.CreatedAt,
	}, true, nil
}

func unprocessedIDsQuery() sq.SelectBuilder {
	return psql.Select("id").
		From("news_items").
		Where(sq.Eq{"processed_at": nil}).
		Where(sq.Eq{"failed_at": nil}).
		OrderBy("id")
}

func (r *NewsRepository) ListUnprocessedIDs(ctx context.Context) ([]string, error) {
	query, args, err := unprocessedIDsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list unprocessed news query: %w", err)
	}

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list unprocessed news: %w", err)
	}
	return ids, nil
}

func (r *NewsRepository) MarkProcessed(ctx context.Context, id string) error {
	query, args, err := psql.Update("news_items").
		Set("processed_at", sq.Expr("COALESCE(processed_at, ?)", r.now().UTC())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark news processed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark news processed %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark news processed %s rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", news.ErrNotFound, id)
	}
	return nil
}

func (r *NewsRepository) IsProcessed(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Select("processed_at IS NOT NULL").
		From("news_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build is processed query: %w", err)
	}

	var processed bool
	if err := r.db.GetContext(ctx, &processed, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("read processed flag %s: %w", id, err)
	}
	return processed, nil
}

func (r *NewsRepository) RecordRejection(ctx context.Context, id string) (int, error) {
	query, args, err := psql.Update("news_items").
		Set("rejections", sq.Expr("rejections + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING rejections").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build record rejection query: %w", err)
	}

	var rejections int
	if err := r.db.GetContext(ctx, &rejections, query, args...); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: %s", news.ErrNotFound, id)
		}
		return 0, fmt.Errorf("record rejection %s: %w", id, err)
	}
	return rejections, nil
}

func (r *NewsRepository) MarkFailed(ctx context.Context, id string) error {
	query, args, err := psql.Update("news_items").
		Set("failed_at", sq.Expr("COALESCE(failed_at, ?)", r.now().UTC())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark news failed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark news failed %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark news failed %s rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", news.ErrNotFound, id)
	}
	return nil
}

func (r *NewsRepository) IsFailed(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Select("failed_at IS NOT NULL").
		From("news_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build is failed query: %w", err)
	}

	var failed bool
	if err := r.db.GetContext(ctx, &failed, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("read failed flag %s: %w", id, err)
	}
	return failed, nil
}
