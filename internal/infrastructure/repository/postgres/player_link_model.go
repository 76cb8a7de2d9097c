package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type playerLinkTableModel struct {
	PlayerID      string          `db:"player_id"`
	Name          string          `db:"name"`
	Status        int             `db:"status"`
	Direction     sql.NullString  `db:"direction"`
	RelatedClubs  []byte          `db:"related_clubs"`
	TransferType  sql.NullString  `db:"transfer_type"`
	PriceAmount   sql.NullFloat64 `db:"price_amount"`
	PriceCurrency sql.NullString  `db:"price_currency"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type playerLinkEventTableModel struct {
	PlayerID   string         `db:"player_id"`
	Seq        int            `db:"seq"`
	Type       string         `db:"event_type"`
	Details    string         `db:"details"`
	Confidence int            `db:"confidence"`
	NewsIDs    pq.StringArray `db:"news_ids"`
	SourceTier int            `db:"source_tier"`
	CreatedAt  time.Time      `db:"created_at"`
}

type relatedClubColumn struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type newsItemTableModel struct {
	ID          string       `db:"id"`
	Source      string       `db:"source"`
	URL         string       `db:"url"`
	Title       string       `db:"title"`
	Content     string       `db:"content"`
	Tier        int          `db:"tier"`
	CreatedAt   time.Time    `db:"created_at"`
	ProcessedAt sql.NullTime `db:"processed_at"`
}
