package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
)

type PlayerLinkRepository struct {
	db *sqlx.DB
}

var playerLinkSelectColumns = []string{
	"player_id",
	"name",
	"status",
	"direction",
	"related_clubs",
	"transfer_type",
	"price_amount",
	"price_currency",
	"updated_at",
}

var playerLinkEventSelectColumns = []string{
	"player_id",
	"seq",
	"event_type",
	"details",
	"confidence",
	"news_ids",
	"source_tier",
	"created_at",
}

func NewPlayerLinkRepository(db *sqlx.DB) *PlayerLinkRepository {
	return &PlayerLinkRepository{db: db}
}

func (r *PlayerLinkRepository) List(ctx context.Context) ([]playerlink.PlayerLink, error) {
	query, args, err := psql.Select(playerLinkSelectColumns...).From("player_links").
		OrderBy("player_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select player links query: %w", err)
	}

	var rows []playerLinkTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player links: %w", err)
	}
	if len(rows) == 0 {
		return []playerlink.PlayerLink{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PlayerID)
	}
	events, err := r.eventsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]playerlink.PlayerLink, 0, len(rows))
	for _, row := range rows {
		link, err := toPlayerLink(row, events[row.PlayerID])
		if err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, nil
}

func (r *PlayerLinkRepository) Get(ctx context.Context, playerID string) (playerlink.PlayerLink, bool, error) {
	query, args, err := psql.Select(playerLinkSelectColumns...).From("player_links").
		Where(sq.Eq{"player_id": playerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return playerlink.PlayerLink{}, false, fmt.Errorf("build get player link query: %w", err)
	}

	var row playerLinkTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerlink.PlayerLink{}, false, nil
		}
		return playerlink.PlayerLink{}, false, fmt.Errorf("get player link: %w", err)
	}

	events, err := r.eventsFor(ctx, []string{playerID})
	if err != nil {
		return playerlink.PlayerLink{}, false, err
	}
	link, err := toPlayerLink(row, events[playerID])
	if err != nil {
		return playerlink.PlayerLink{}, false, err
	}
	return link, true, nil
}

// Save replaces the record and its whole timeline in one transaction.
func (r *PlayerLinkRepository) Save(ctx context.Context, link playerlink.PlayerLink) error {
	if err := link.Validate(); err != nil {
		return err
	}

	clubs := make([]relatedClubColumn, 0, len(link.RelatedClubs))
	for _, club := range link.RelatedClubs {
		clubs = append(clubs, relatedClubColumn{Name: club.Name, Role: string(club.Role)})
	}
	clubsJSON, err := sonic.ConfigStd.Marshal(clubs)
	if err != nil {
		return fmt.Errorf("encode related clubs player=%s: %w", link.PlayerID, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for player link save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertLinkQuery = `
INSERT INTO player_links (player_id, name, status, direction, related_clubs, transfer_type, price_amount, price_currency, updated_at)
VALUES (:player_id, :name, :status, :direction, :related_clubs, :transfer_type, :price_amount, :price_currency, :updated_at)
ON CONFLICT (player_id)
DO UPDATE SET
    name = EXCLUDED.name,
    status = EXCLUDED.status,
    direction = EXCLUDED.direction,
    related_clubs = EXCLUDED.related_clubs,
    transfer_type = EXCLUDED.transfer_type,
    price_amount = EXCLUDED.price_amount,
    price_currency = EXCLUDED.price_currency,
    updated_at = EXCLUDED.updated_at`

	upsertSQL, upsertArgs, err := sqlx.Named(upsertLinkQuery, toPlayerLinkRow(link, clubsJSON))
	if err != nil {
		return fmt.Errorf("bind upsert player link query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(upsertSQL), upsertArgs...); err != nil {
		return fmt.Errorf("upsert player link player=%s: %w", link.PlayerID, err)
	}

	clearSQL, clearArgs, err := psql.Delete("player_link_events").Where(sq.Eq{"player_id": link.PlayerID}).ToSql()
	if err != nil {
		return fmt.Errorf("build clear timeline query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearSQL, clearArgs...); err != nil {
		return fmt.Errorf("clear timeline player=%s: %w", link.PlayerID, err)
	}

	if len(link.Timeline) > 0 {
		insert := psql.Insert("player_link_events").Columns(playerLinkEventSelectColumns...)
		for i, event := range link.Timeline {
			insert = insert.Values(
				link.PlayerID,
				i,
				event.Type,
				event.Details,
				event.Confidence,
				pqStringArray(event.Provenance),
				event.SourceTier,
				event.CreatedAt.UTC(),
			)
		}
		insertSQL, insertArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert timeline query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert timeline player=%s: %w", link.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit player link save tx: %w", err)
	}
	return nil
}

func (r *PlayerLinkRepository) eventsFor(ctx context.Context, playerIDs []string) (map[string][]playerlink.TimelineEvent, error) {
	query, args, err := psql.Select(playerLinkEventSelectColumns...).From("player_link_events").
		Where(sq.Eq{"player_id": playerIDs}).
		OrderBy("player_id", "seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select timeline query: %w", err)
	}

	var rows []playerLinkEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select timeline: %w", err)
	}

	out := make(map[string][]playerlink.TimelineEvent, len(playerIDs))
	for _, row := range rows {
		out[row.PlayerID] = append(out[row.PlayerID], playerlink.TimelineEvent{
			Type:       row.Type,
			Details:    row.Details,
			Confidence: row.Confidence,
			CreatedAt:  row.CreatedAt,
			Provenance: []string(row.NewsIDs),
			SourceTier: row.SourceTier,
		})
	}
	return out, nil
}

func toPlayerLinkRow(link playerlink.PlayerLink, clubsJSON []byte) playerLinkTableModel {
	row := playerLinkTableModel{
		PlayerID:     link.PlayerID,
		Name:         link.Name,
		Status:       int(link.Status),
		Direction:    nullString(string(link.Direction)),
		RelatedClubs: clubsJSON,
		TransferType: nullString(string(link.TransferType)),
		UpdatedAt:    link.UpdatedAt.UTC(),
	}
	if link.Price != nil {
		row.PriceAmount = sql.NullFloat64{Float64: link.Price.Amount, Valid: true}
		row.PriceCurrency = nullString(link.Price.Currency)
	}
	return row
}

func toPlayerLink(row playerLinkTableModel, events []playerlink.TimelineEvent) (playerlink.PlayerLink, error) {
	status := playerlink.Status(row.Status)
	if !status.Valid() {
		return playerlink.PlayerLink{}, fmt.Errorf("player link %s has invalid status %d", row.PlayerID, row.Status)
	}

	var direction playerlink.Direction
	if row.Direction.Valid {
		parsed, err := playerlink.ParseDirection(row.Direction.String)
		if err != nil {
			return playerlink.PlayerLink{}, fmt.Errorf("player link %s: %w", row.PlayerID, err)
		}
		direction = parsed
	}

	var clubs []relatedClubColumn
	if len(row.RelatedClubs) > 0 {
		if err := sonic.ConfigStd.Unmarshal(row.RelatedClubs, &clubs); err != nil {
			return playerlink.PlayerLink{}, fmt.Errorf("decode related clubs player=%s: %w", row.PlayerID, err)
		}
	}
	related := make([]playerlink.RelatedClub, 0, len(clubs))
	for _, club := range clubs {
		related = append(related, playerlink.RelatedClub{Name: club.Name, Role: playerlink.ParseRole(club.Role)})
	}

	var price *playerlink.Price
	if row.PriceAmount.Valid {
		price = &playerlink.Price{Amount: row.PriceAmount.Float64}
		if row.PriceCurrency.Valid {
			price.Currency = playerlink.NormalizeCurrency(row.PriceCurrency.String)
		}
	}

	if events == nil {
		events = []playerlink.TimelineEvent{}
	}
	return playerlink.PlayerLink{
		PlayerID:     row.PlayerID,
		Name:         row.Name,
		Status:       status,
		Direction:    direction,
		Timeline:     events,
		RelatedClubs: related,
		TransferType: playerlink.ParseTransferType(row.TransferType.String),
		Price:        price,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func pqStringArray(values []string) any {
	if values == nil {
		values = []string{}
	}
	return pq.StringArray(values)
}
