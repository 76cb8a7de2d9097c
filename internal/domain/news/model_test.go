package news

import "testing"

func TestTierFromFlair(t *testing.T) {
	cases := []struct {
		flair string
		want  Tier
		ok    bool
	}{
		{flair: "Tier: Here We Go!", want: TierOne, ok: true},
		{flair: "Transfer News: Tier 3", want: TierThree, ok: true},
		{flair: " Transfer News ", want: TierFour, ok: true},
		{flair: "Match Thread", ok: false},
		{flair: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := TierFromFlair(tc.flair)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("flair %q: got=(%d,%v) want=(%d,%v)", tc.flair, got, ok, tc.want, tc.ok)
		}
	}
}

func TestItem_Text(t *testing.T) {
	item := Item{ID: "r-1", Title: "Tel to Spurs", Body: "Loan agreed."}
	if got := item.Text(); got != "Tel to Spurs\n\nLoan agreed." {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := (Item{ID: "r-2", Title: "Only title"}).Text(); got != "Only title" {
		t.Fatalf("unexpected title-only text: %q", got)
	}
}

func TestItem_Validate(t *testing.T) {
	if err := (Item{Title: "x"}).Validate(); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if err := (Item{ID: "r-1"}).Validate(); err == nil {
		t.Fatalf("expected error for empty content")
	}
	if err := (Item{ID: "r-1", Title: "x", Tier: 9}).Validate(); err == nil {
		t.Fatalf("expected error for invalid tier")
	}
	if err := (Item{ID: "r-1", Title: "x", Tier: TierTwo}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
