package extraction

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/optional"
)

func TestDecoder_FullObject(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"players": [{"name": " Mathys Tel ", "role": "Target", "current_club": "Bayern Munich"}],
		"transfer_status": "rumors",
		"direction": "incoming",
		"timeline_event": {"type": "rumor", "details": "Spurs enquire", "confidence": 55},
		"related_clubs": ["Bayern Munich", {"name": "Tottenham Hotspur", "role": "destination"}],
		"transfer_type": "Loan with option",
		"price": {"amount": 55000000, "currency": "eur"},
		"confidence": 70
	}`)

	delta, err := NewDecoder().Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.Ok() {
		t.Fatalf("expected ok delta")
	}

	wantPlayers := []PlayerMention{{Name: "Mathys Tel", Role: MentionTarget, CurrentClub: "Bayern Munich"}}
	if diff := cmp.Diff(wantPlayers, delta.Players); diff != "" {
		t.Fatalf("unexpected players (-want +got):\n%s", diff)
	}
	if status, ok := delta.Status.Get(); !ok || status != playerlink.StatusRumors {
		t.Fatalf("unexpected status: %v %v", status, ok)
	}
	if direction, ok := delta.Direction.Get(); !ok || direction != playerlink.DirectionIncoming {
		t.Fatalf("unexpected direction: %v %v", direction, ok)
	}
	event, ok := delta.Event.Get()
	if !ok || event.Type != "rumor" || event.Confidence != 55 {
		t.Fatalf("unexpected event: %+v %v", event, ok)
	}
	wantClubs := []playerlink.RelatedClub{
		{Name: "Bayern Munich", Role: playerlink.RoleInterested},
		{Name: "Tottenham Hotspur", Role: playerlink.RoleDestination},
	}
	if diff := cmp.Diff(wantClubs, delta.RelatedClubs); diff != "" {
		t.Fatalf("unexpected clubs (-want +got):\n%s", diff)
	}
	if transferType, ok := delta.TransferType.Get(); !ok || transferType != playerlink.TransferTypeLoanWithOption {
		t.Fatalf("unexpected transfer type: %q %v", transferType, ok)
	}
	if price, ok := delta.Price.Get(); !ok || price != (playerlink.Price{Amount: 55000000, Currency: "EUR"}) {
		t.Fatalf("unexpected price: %+v %v", price, ok)
	}
}

func TestDecoder_PriceAndTransferTypeEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantType  optional.State
		wantPrice optional.State
	}{
		{name: "absent", raw: `{"players": []}`, wantType: optional.StateAbsent, wantPrice: optional.StateAbsent},
		{name: "null", raw: `{"transfer_type": null, "price": null}`, wantType: optional.StateNull, wantPrice: optional.StateNull},
		{name: "price without amount", raw: `{"price": {"amount": null, "currency": "GBP"}}`, wantType: optional.StateAbsent, wantPrice: optional.StateNull},
		{name: "zero amount", raw: `{"price": {"amount": 0, "currency": null}}`, wantType: optional.StateAbsent, wantPrice: optional.StateNull},
		{name: "blank type", raw: `{"transfer_type": "  "}`, wantType: optional.StateNull, wantPrice: optional.StateAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := NewDecoder().Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := delta.TransferType.State(); got != tt.wantType {
				t.Fatalf("transfer type state: want %v got %v", tt.wantType, got)
			}
			if got := delta.Price.State(); got != tt.wantPrice {
				t.Fatalf("price state: want %v got %v", tt.wantPrice, got)
			}
		})
	}
}

func TestDecoder_UnknownTransferTypeAndCurrency(t *testing.T) {
	t.Parallel()

	delta, err := NewDecoder().Decode([]byte(`{"transfer_type": "swap deal", "price": {"amount": 30000000, "currency": "CHF"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transferType, _ := delta.TransferType.Get(); transferType != playerlink.TransferTypeUnclear {
		t.Fatalf("expected unclear, got %q", transferType)
	}
	if price, ok := delta.Price.Get(); !ok || price.Amount != 30000000 || price.Currency != "" {
		t.Fatalf("unexpected price: %+v %v", price, ok)
	}
}

func TestDecoder_RejectsNegativePrice(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder().Decode([]byte(`{"price": {"amount": -5}}`))
	if !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected invalid shape, got %v", err)
	}
}

func TestDecoder_BareStringEventTakesTopLevelConfidence(t *testing.T) {
	t.Parallel()

	delta, err := NewDecoder().Decode([]byte(`{"players": [{"name": "Kevin Danso"}], "timeline_event": "Medical scheduled", "confidence": 88}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	event, ok := delta.Event.Get()
	if !ok {
		t.Fatalf("expected event")
	}
	if event.Type != playerlink.EventTypeNews || event.Details != "Medical scheduled" || event.Confidence != 88 {
		t.Fatalf("unexpected coerced event: %+v", event)
	}
	if delta.Players[0].Role != MentionTarget {
		t.Fatalf("missing role must default to target, got %q", delta.Players[0].Role)
	}
}

func TestDecoder_TriState(t *testing.T) {
	t.Parallel()

	delta, err := NewDecoder().Decode([]byte(`{"players": [], "transfer_status": null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.Status.IsNull() {
		t.Fatalf("expected explicit null status")
	}
	if !delta.Direction.IsAbsent() || !delta.Event.IsAbsent() {
		t.Fatalf("expected absent direction and event")
	}
}

func TestDecoder_LegacyClubsKey(t *testing.T) {
	t.Parallel()

	delta, err := NewDecoder().Decode([]byte(`{"players": [{"name": "Kevin Danso"}], "clubs": ["RC Lens"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta.RelatedClubs) != 1 || delta.RelatedClubs[0].Name != "RC Lens" || delta.RelatedClubs[0].Role != playerlink.RoleInterested {
		t.Fatalf("unexpected clubs: %+v", delta.RelatedClubs)
	}
}

func TestDecoder_RejectsBadShapes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":         `Sure! Here is the JSON you asked for`,
		"array":            `[{"name": "Mathys Tel"}]`,
		"wrong type":       `{"players": "Mathys Tel"}`,
		"missing name":     `{"players": [{"role": "target"}]}`,
		"unknown role":     `{"players": [{"name": "Mathys Tel", "role": "journalist"}]}`,
		"unknown status":   `{"players": [], "transfer_status": "done deal"}`,
		"bad direction":    `{"players": [], "direction": "sideways"}`,
		"confidence range": `{"players": [], "confidence": 150}`,
		"event confidence": `{"players": [], "timeline_event": {"type": "bid", "confidence": -3}}`,
		"bad club role":    `{"players": [], "related_clubs": [{"name": "Spurs", "role": "owner"}]}`,
	}

	decoder := NewDecoder()
	for name, raw := range cases {
		delta, err := decoder.Decode([]byte(raw))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("%s: expected invalid shape error, got %v", name, err)
		}
		if delta.Ok() {
			t.Fatalf("%s: failed decode must return an empty delta", name)
		}
	}
}
