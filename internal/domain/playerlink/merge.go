package playerlink

import (
	"strings"
	"time"

	"github.com/felixbhw/n17-dash/internal/platform/optional"
)

// EventSuggestion is a timeline event proposed by the extractor.
type EventSuggestion struct {
	Type       string
	Details    string
	Confidence int
}

// Delta is a partial update for a single player. Absent and null fields both
// leave the current value alone.
type Delta struct {
	PlayerID     string
	Name         string
	Status       optional.Field[Status]
	Direction    optional.Field[Direction]
	Event        optional.Field[EventSuggestion]
	RelatedClubs []RelatedClub
	TransferType optional.Field[TransferType]
	Price        optional.Field[Price]
	SourceTier   int
}

// Merge folds delta into current and returns the new record. current is never
// modified; a nil current starts a fresh record at hearsay.
func Merge(current *PlayerLink, delta Delta, provenance string, now time.Time) PlayerLink {
	var out PlayerLink
	if current != nil {
		out = current.Clone()
		if strings.TrimSpace(out.Name) == "" {
			out.Name = strings.TrimSpace(delta.Name)
		}
	} else {
		out = PlayerLink{
			PlayerID:     delta.PlayerID,
			Name:         strings.TrimSpace(delta.Name),
			Status:       StatusHearsay,
			Timeline:     []TimelineEvent{},
			RelatedClubs: []RelatedClub{},
		}
	}

	if status, ok := delta.Status.Get(); ok && status.Valid() && status > out.Status {
		out.Status = status
	}
	if direction, ok := delta.Direction.Get(); ok && direction != DirectionUnknown {
		out.Direction = direction
	}

	// unclear only fills a blank; it never overwrites a named deal type.
	if transferType, ok := delta.TransferType.Get(); ok && transferType.Valid() && transferType != "" {
		if transferType != TransferTypeUnclear || out.TransferType == "" {
			out.TransferType = transferType
		}
	}
	if price, ok := delta.Price.Get(); ok && price.Validate() == nil {
		out.Price = &price
	}

	provenance = strings.TrimSpace(provenance)
	if suggestion, ok := delta.Event.Get(); ok && provenance != "" {
		out.Timeline = append(out.Timeline, newEvent(suggestion, provenance, delta.SourceTier, now))
	}

	out.RelatedClubs = mergeClubs(out.RelatedClubs, delta.RelatedClubs)
	out.UpdatedAt = now
	return out
}

func newEvent(s EventSuggestion, provenance string, tier int, now time.Time) TimelineEvent {
	eventType := strings.ToLower(strings.TrimSpace(s.Type))
	if eventType == "" {
		eventType = EventTypeNews
	}
	confidence := s.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return TimelineEvent{
		Type:       eventType,
		Details:    strings.TrimSpace(s.Details),
		Confidence: confidence,
		CreatedAt:  now,
		Provenance: []string{provenance},
		SourceTier: tier,
	}
}

type clubKey struct {
	name string
	role Role
}

func keyOf(c RelatedClub) clubKey {
	return clubKey{name: strings.ToLower(cleanClubName(c.Name)), role: c.Role}
}

func cleanClubName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// mergeClubs keeps first-seen order; a later entry with the same key replaces
// the display name.
func mergeClubs(existing, incoming []RelatedClub) []RelatedClub {
	out := make([]RelatedClub, 0, len(existing)+len(incoming))
	index := make(map[clubKey]int, len(existing)+len(incoming))

	add := func(club RelatedClub) {
		club.Name = cleanClubName(club.Name)
		if club.Name == "" {
			return
		}
		club.Role = ParseRole(string(club.Role))
		key := keyOf(club)
		if i, ok := index[key]; ok {
			out[i].Name = club.Name
			return
		}
		index[key] = len(out)
		out = append(out, club)
	}

	for _, club := range existing {
		add(club)
	}
	for _, club := range incoming {
		add(club)
	}
	return out
}
