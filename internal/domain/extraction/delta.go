package extraction

import (
	"strings"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/optional"
)

// MentionRole is how a news item refers to a player.
type MentionRole string

const (
	MentionCurrent MentionRole = "current"
	MentionTarget  MentionRole = "target"
)

type PlayerMention struct {
	Name        string
	Role        MentionRole
	CurrentClub string
}

// FactDelta is the partial update proposed for a news item. The zero value is
// the empty delta.
type FactDelta struct {
	Players      []PlayerMention
	Status       optional.Field[playerlink.Status]
	Direction    optional.Field[playerlink.Direction]
	Event        optional.Field[playerlink.EventSuggestion]
	RelatedClubs []playerlink.RelatedClub
	Confidence   optional.Field[int]
	TransferType optional.Field[playerlink.TransferType]
	Price        optional.Field[playerlink.Price]
	ok           bool
	rejected     bool
}

// Rejected is the empty delta for an oracle answer that failed decoding, as
// opposed to an oracle that could not be reached.
func Rejected() FactDelta {
	return FactDelta{rejected: true}
}

// Ok reports whether the delta came from a valid oracle response.
func (d FactDelta) Ok() bool {
	return d.ok
}

// Rejected reports whether the oracle answered with an unusable response.
func (d FactDelta) Rejected() bool {
	return d.rejected
}

// WithoutDenied drops mentions whose names are in the denylist.
func (d FactDelta) WithoutDenied(deny Denylist) (FactDelta, int) {
	out := d
	out.Players = make([]PlayerMention, 0, len(d.Players))
	dropped := 0
	for _, mention := range d.Players {
		if deny.Contains(mention.Name) {
			dropped++
			continue
		}
		out.Players = append(out.Players, mention)
	}
	return out, dropped
}

// ForPlayer narrows the delta to the merge input of one resolved player.
func (d FactDelta) ForPlayer(playerID, name string, tier int) playerlink.Delta {
	return playerlink.Delta{
		PlayerID:     playerID,
		Name:         strings.TrimSpace(name),
		Status:       d.Status,
		Direction:    d.Direction,
		Event:        d.Event,
		RelatedClubs: append([]playerlink.RelatedClub(nil), d.RelatedClubs...),
		TransferType: d.TransferType,
		Price:        d.Price,
		SourceTier:   tier,
	}
}
