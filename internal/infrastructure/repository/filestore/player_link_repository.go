package filestore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
)

type eventRecord struct {
	Type       string    `json:"type"`
	Details    string    `json:"details"`
	Confidence int       `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	NewsIDs    []string  `json:"news_ids"`
	SourceTier int       `json:"source_tier,omitempty"`
}

type clubRecord struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type priceRecord struct {
	Amount   float64 `json:"amount"`
	Currency *string `json:"currency"`
}

type playerLinkRecord struct {
	PlayerID     string        `json:"player_id"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Direction    *string       `json:"direction"`
	Timeline     []eventRecord `json:"timeline"`
	RelatedClubs []clubRecord  `json:"related_clubs"`
	TransferType string        `json:"transfer_type,omitempty"`
	Price        *priceRecord  `json:"price"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type PlayerLinkRepository struct {
	store *Store
}

func NewPlayerLinkRepository(store *Store) *PlayerLinkRepository {
	return &PlayerLinkRepository{store: store}
}

func (r *PlayerLinkRepository) List(ctx context.Context) ([]playerlink.PlayerLink, error) {
	ids, err := r.store.keys(playersDir)
	if err != nil {
		return nil, err
	}
	out := make([]playerlink.PlayerLink, 0, len(ids))
	for _, id := range ids {
		link, ok, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *PlayerLinkRepository) Get(_ context.Context, playerID string) (playerlink.PlayerLink, bool, error) {
	var rec playerLinkRecord
	ok, err := r.store.readJSON(playersDir, playerID, &rec)
	if err != nil || !ok {
		return playerlink.PlayerLink{}, false, err
	}
	link, err := rec.toDomain()
	if err != nil {
		return playerlink.PlayerLink{}, false, errors.Wrapf(err, "player link %s", playerID)
	}
	return link, true, nil
}

func (r *PlayerLinkRepository) Save(_ context.Context, link playerlink.PlayerLink) error {
	if err := link.Validate(); err != nil {
		return err
	}
	return r.store.writeJSON(playersDir, link.PlayerID, fromDomain(link))
}

func fromDomain(link playerlink.PlayerLink) playerLinkRecord {
	rec := playerLinkRecord{
		PlayerID:     link.PlayerID,
		Name:         link.Name,
		Status:       link.Status.String(),
		Timeline:     make([]eventRecord, 0, len(link.Timeline)),
		RelatedClubs: make([]clubRecord, 0, len(link.RelatedClubs)),
		TransferType: string(link.TransferType),
		UpdatedAt:    link.UpdatedAt.UTC(),
	}
	if link.Price != nil {
		rec.Price = &priceRecord{Amount: link.Price.Amount}
		if link.Price.Currency != "" {
			currency := link.Price.Currency
			rec.Price.Currency = &currency
		}
	}
	if link.Direction != playerlink.DirectionUnknown {
		direction := string(link.Direction)
		rec.Direction = &direction
	}
	for _, event := range link.Timeline {
		rec.Timeline = append(rec.Timeline, eventRecord{
			Type:       event.Type,
			Details:    event.Details,
			Confidence: event.Confidence,
			CreatedAt:  event.CreatedAt.UTC(),
			NewsIDs:    append([]string(nil), event.Provenance...),
			SourceTier: event.SourceTier,
		})
	}
	for _, club := range link.RelatedClubs {
		rec.RelatedClubs = append(rec.RelatedClubs, clubRecord{Name: club.Name, Role: string(club.Role)})
	}
	return rec
}

func (rec playerLinkRecord) toDomain() (playerlink.PlayerLink, error) {
	status, err := playerlink.ParseStatus(rec.Status)
	if err != nil {
		return playerlink.PlayerLink{}, err
	}
	link := playerlink.PlayerLink{
		PlayerID:     rec.PlayerID,
		Name:         rec.Name,
		Status:       status,
		Timeline:     make([]playerlink.TimelineEvent, 0, len(rec.Timeline)),
		RelatedClubs: make([]playerlink.RelatedClub, 0, len(rec.RelatedClubs)),
		TransferType: playerlink.ParseTransferType(rec.TransferType),
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.Price != nil {
		price := playerlink.Price{Amount: rec.Price.Amount}
		if rec.Price.Currency != nil {
			price.Currency = playerlink.NormalizeCurrency(*rec.Price.Currency)
		}
		link.Price = &price
	}
	if rec.Direction != nil {
		direction, err := playerlink.ParseDirection(*rec.Direction)
		if err != nil {
			return playerlink.PlayerLink{}, err
		}
		link.Direction = direction
	}
	for _, event := range rec.Timeline {
		link.Timeline = append(link.Timeline, playerlink.TimelineEvent{
			Type:       event.Type,
			Details:    event.Details,
			Confidence: event.Confidence,
			CreatedAt:  event.CreatedAt,
			Provenance: append([]string(nil), event.NewsIDs...),
			SourceTier: event.SourceTier,
		})
	}
	for _, club := range rec.RelatedClubs {
		link.RelatedClubs = append(link.RelatedClubs, playerlink.RelatedClub{Name: club.Name, Role: playerlink.ParseRole(club.Role)})
	}
	return link, nil
}
