package playerlink

import (
	"fmt"
	"strings"
	"time"
)

const EventTypeNews = "news"

// TimelineEvent is one dated observation about a player. Provenance holds the
// ids of the news items it came from.
type TimelineEvent struct {
	Type       string
	Details    string
	Confidence int
	CreatedAt  time.Time
	Provenance []string
	SourceTier int
}

func (e TimelineEvent) Validate() error {
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("event type is required")
	}
	if e.Confidence < 0 || e.Confidence > 100 {
		return fmt.Errorf("event confidence must be within 0..100, got %d", e.Confidence)
	}
	if len(e.Provenance) == 0 {
		return fmt.Errorf("event requires at least one provenance id")
	}
	for _, id := range e.Provenance {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("event provenance id must not be blank")
		}
	}
	return nil
}

type RelatedClub struct {
	Name string
	Role Role
}

// PlayerLink is the transfer state of one player.
type PlayerLink struct {
	PlayerID     string
	Name         string
	Status       Status
	Direction    Direction
	Timeline     []TimelineEvent
	RelatedClubs []RelatedClub
	TransferType TransferType
	Price        *Price
	UpdatedAt    time.Time
}

func (p PlayerLink) Validate() error {
	if strings.TrimSpace(p.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid transfer status: %d", int(p.Status))
	}
	if _, err := ParseDirection(string(p.Direction)); err != nil {
		return err
	}
	if !p.TransferType.Valid() {
		return fmt.Errorf("invalid transfer type: %s", p.TransferType)
	}
	if p.Price != nil {
		if err := p.Price.Validate(); err != nil {
			return err
		}
	}
	for i, event := range p.Timeline {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("timeline event %d: %w", i, err)
		}
	}

	seen := make(map[clubKey]struct{}, len(p.RelatedClubs))
	for _, club := range p.RelatedClubs {
		if _, ok := AllRoles[club.Role]; !ok {
			return fmt.Errorf("invalid club role: %s", club.Role)
		}
		key := keyOf(club)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate related club: %s (%s)", club.Name, club.Role)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// HasProvenance reports whether any timeline event came from newsID.
func (p PlayerLink) HasProvenance(newsID string) bool {
	for _, event := range p.Timeline {
		for _, id := range event.Provenance {
			if id == newsID {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy.
func (p PlayerLink) Clone() PlayerLink {
	out := p
	out.Timeline = make([]TimelineEvent, len(p.Timeline))
	for i, event := range p.Timeline {
		event.Provenance = append([]string(nil), event.Provenance...)
		out.Timeline[i] = event
	}
	out.RelatedClubs = append([]RelatedClub(nil), p.RelatedClubs...)
	if p.Price != nil {
		price := *p.Price
		out.Price = &price
	}
	return out
}

// ResetStatus is the operator override; it is the only way to lower a status.
func (p PlayerLink) ResetStatus(status Status, now time.Time) (PlayerLink, error) {
	if !status.Valid() {
		return PlayerLink{}, fmt.Errorf("invalid transfer status: %d", int(status))
	}
	out := p.Clone()
	out.Status = status
	out.UpdatedAt = now
	return out, nil
}

// DeleteEvent removes one timeline event on operator request.
func (p PlayerLink) DeleteEvent(index int, now time.Time) (PlayerLink, error) {
	if index < 0 || index >= len(p.Timeline) {
		return PlayerLink{}, fmt.Errorf("timeline index %d out of range", index)
	}
	out := p.Clone()
	out.Timeline = append(out.Timeline[:index], out.Timeline[index+1:]...)
	out.UpdatedAt = now
	return out, nil
}
