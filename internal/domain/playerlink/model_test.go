package playerlink

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"hearsay":     StatusHearsay,
		"Rumours":     StatusRumors,
		" developing": StatusDeveloping,
		"Here we go!": StatusConfirmed,
		"confirmed":   StatusConfirmed,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil {
			t.Fatalf("ParseStatus(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q)=%s want %s", in, got, want)
		}
	}
	if _, err := ParseStatus("done deal maybe"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if StatusConfirmed.Label() != "here we go!" {
		t.Fatalf("unexpected confirmed label: %s", StatusConfirmed.Label())
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	if ParseRole("Destination") != RoleDestination {
		t.Fatalf("expected destination role")
	}
	if ParseRole("") != RoleInterested || ParseRole("linked") != RoleInterested {
		t.Fatalf("unknown roles must default to interested")
	}
}

func TestPlayerLink_Validate(t *testing.T) {
	t.Parallel()

	valid := PlayerLink{
		PlayerID: "1",
		Name:     "Player",
		Status:   StatusRumors,
		Timeline: []TimelineEvent{{Type: "news", Confidence: 50, Provenance: []string{"r-1"}}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noProvenance := valid.Clone()
	noProvenance.Timeline[0].Provenance = nil
	if err := noProvenance.Validate(); err == nil {
		t.Fatalf("expected error for event without provenance")
	}

	dupClubs := valid.Clone()
	dupClubs.RelatedClubs = []RelatedClub{{Name: "Spurs", Role: RoleInterested}, {Name: "spurs", Role: RoleInterested}}
	if err := dupClubs.Validate(); err == nil {
		t.Fatalf("expected error for duplicate clubs")
	}

	badType := valid.Clone()
	badType.TransferType = "swap"
	if err := badType.Validate(); err == nil {
		t.Fatalf("expected error for unknown transfer type")
	}

	badPrice := valid.Clone()
	badPrice.Price = &Price{Amount: 10, Currency: "CHF"}
	if err := badPrice.Validate(); err == nil {
		t.Fatalf("expected error for unsupported currency")
	}

	priced := valid.Clone()
	priced.Price = &Price{Amount: 10}
	copied := priced.Clone()
	copied.Price.Amount = 99
	if priced.Price.Amount != 10 {
		t.Fatalf("clone must copy the price")
	}
}

func TestPlayerLink_OperatorActions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 3, 23, 0, 0, 0, time.UTC)
	link := PlayerLink{
		PlayerID: "1",
		Name:     "Player",
		Status:   StatusConfirmed,
		Timeline: []TimelineEvent{
			{Type: "news", Provenance: []string{"r-1"}},
			{Type: "news", Provenance: []string{"r-2"}},
		},
	}

	reset, err := link.ResetStatus(StatusHearsay, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset.Status != StatusHearsay || link.Status != StatusConfirmed {
		t.Fatalf("reset must lower status on a copy only")
	}

	trimmed, err := link.DeleteEvent(0, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trimmed.Timeline) != 1 || trimmed.Timeline[0].Provenance[0] != "r-2" {
		t.Fatalf("unexpected timeline after delete: %+v", trimmed.Timeline)
	}
	if len(link.Timeline) != 2 {
		t.Fatalf("delete must not touch the original")
	}
	if _, err := link.DeleteEvent(5, now); err == nil {
		t.Fatalf("expected out of range error")
	}
}
