package httpapi

import (
	"time"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

type timelineEventDTO struct {
	Index      int       `json:"index"`
	Type       string    `json:"type"`
	Details    string    `json:"details"`
	Confidence int       `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
	NewsIDs    []string  `json:"newsIds"`
	SourceTier int       `json:"sourceTier,omitempty"`
}

type relatedClubDTO struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type priceDTO struct {
	Amount   float64 `json:"amount"`
	Currency *string `json:"currency"`
}

type playerLinkDTO struct {
	PlayerID     string             `json:"playerId"`
	Name         string             `json:"name"`
	Status       string             `json:"status"`
	StatusLabel  string             `json:"statusLabel"`
	Direction    *string            `json:"direction"`
	Timeline     []timelineEventDTO `json:"timeline"`
	RelatedClubs []relatedClubDTO   `json:"relatedClubs"`
	TransferType *string            `json:"transferType"`
	Price        *priceDTO          `json:"price"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type playerLinkSummaryDTO struct {
	PlayerID    string    `json:"playerId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	Direction   *string   `json:"direction"`
	Events      int       `json:"events"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type candidateDTO struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
}

type processResultDTO struct {
	Processed      int `json:"processed"`
	UpdatedPlayers int `json:"updatedPlayers"`
	Errors         int `json:"errors"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
}

type resetStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

type submitNewsRequest struct {
	ID        string     `json:"id" validate:"required,max=200"`
	Source    string     `json:"source" validate:"omitempty,max=200"`
	URL       string     `json:"url" validate:"omitempty,url"`
	Title     string     `json:"title" validate:"required_without=Body"`
	Body      string     `json:"body"`
	Tier      int        `json:"tier" validate:"omitempty,min=1,max=4"`
	CreatedAt *time.Time `json:"createdAt"`
}

func directionPtr(d playerlink.Direction) *string {
	if d == playerlink.DirectionUnknown {
		return nil
	}
	v := string(d)
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func toPriceDTO(p *playerlink.Price) *priceDTO {
	if p == nil {
		return nil
	}
	return &priceDTO{Amount: p.Amount, Currency: optionalString(p.Currency)}
}

func toPlayerLinkDTO(link playerlink.PlayerLink) playerLinkDTO {
	timeline := make([]timelineEventDTO, 0, len(link.Timeline))
	for i, event := range link.Timeline {
		timeline = append(timeline, timelineEventDTO{
			Index:      i,
			Type:       event.Type,
			Details:    event.Details,
			Confidence: event.Confidence,
			CreatedAt:  event.CreatedAt,
			NewsIDs:    append([]string{}, event.Provenance...),
			SourceTier: event.SourceTier,
		})
	}
	clubs := make([]relatedClubDTO, 0, len(link.RelatedClubs))
	for _, club := range link.RelatedClubs {
		clubs = append(clubs, relatedClubDTO{Name: club.Name, Role: string(club.Role)})
	}

	return playerLinkDTO{
		PlayerID:     link.PlayerID,
		Name:         link.Name,
		Status:       link.Status.String(),
		StatusLabel:  link.Status.Label(),
		Direction:    directionPtr(link.Direction),
		Timeline:     timeline,
		RelatedClubs: clubs,
		TransferType: optionalString(string(link.TransferType)),
		Price:        toPriceDTO(link.Price),
		UpdatedAt:    link.UpdatedAt,
	}
}

func toPlayerLinkSummaryDTO(link playerlink.PlayerLink) playerLinkSummaryDTO {
	return playerLinkSummaryDTO{
		PlayerID:    link.PlayerID,
		Name:        link.Name,
		Status:      link.Status.String(),
		StatusLabel: link.Status.Label(),
		Direction:   directionPtr(link.Direction),
		Events:      len(link.Timeline),
		UpdatedAt:   link.UpdatedAt,
	}
}

func toCandidateDTO(c identity.Candidate) candidateDTO {
	return candidateDTO{
		PlayerID: c.PlayerID,
		Name:     c.Name,
		Score:    c.Score,
		Source:   string(c.Source),
	}
}

func toProcessResultDTO(r usecase.ProcessResult) processResultDTO {
	return processResultDTO{
		Processed:      r.Processed,
		UpdatedPlayers: r.UpdatedPlayers,
		Errors:         r.Errors,
		Skipped:        r.Skipped,
		Failed:         r.Failed,
	}
}
