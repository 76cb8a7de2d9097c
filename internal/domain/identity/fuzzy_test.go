package identity

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	t.Parallel()

	tel := Entry{ID: "270510", Name: "M. Tel", Firstname: "Mathys", Lastname: "Tel"}
	cases := []struct {
		name  string
		query string
		entry Entry
		want  float64
	}{
		{name: "single last exact", query: "Tel", entry: tel, want: 0.8},
		{name: "single first exact", query: "Mathys", entry: tel, want: 0.7},
		{name: "single last substring", query: "Te", entry: tel, want: 0.4},
		{name: "single first substring", query: "Math", entry: tel, want: 0.3},
		{name: "full name", query: "Mathys Tel", entry: tel, want: 1.0},
		{name: "abbreviated first name", query: "M. Tel", entry: tel, want: 0.8},
		{name: "wrong surname", query: "J. Smith", entry: Entry{ID: "1", Firstname: "John", Lastname: "Jones"}, want: 0.2},
		{name: "derived from name", query: "Dominic Solanke", entry: Entry{ID: "2", Name: "Dominic Solanke-Mitchell"}, want: 0.7},
		{name: "no overlap", query: "Son", entry: tel, want: 0},
		{name: "empty query", query: "  ", entry: tel, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Score(tc.query, tc.entry); !approx(got, tc.want) {
				t.Fatalf("Score(%q)=%v want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestScore_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	if got := Score("M. Tel", Entry{Firstname: "Mathys", Lastname: "Tel"}); got <= 0.6 {
		t.Fatalf("expected abbreviated first name to clear 0.6, got %v", got)
	}
	if got := Score("J. Smith", Entry{Firstname: "James", Lastname: "Jones"}); got > 0.6 {
		t.Fatalf("expected different surname to stay below 0.6, got %v", got)
	}

	tel := Entry{Firstname: "Mathys", Lastname: "Tel"}
	if got := Score("Kaiii Tel", tel); got != 0.6 {
		t.Fatalf("expected surname-only match to score exactly 0.6, got %v", got)
	}
	if got := Score("M. Te", tel); got != 0.5 {
		t.Fatalf("expected initial plus partial surname to score exactly 0.5, got %v", got)
	}
}

func TestBestMatch(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{ID: "5", Firstname: "Mathys", Lastname: "Tel"},
		{ID: "3", Firstname: "Mathys", Lastname: "Tel"},
		{ID: "9", Firstname: "Mikey", Lastname: "Moore"},
	}

	best, score, ok := BestMatch("Mathys Tel", entries)
	if !ok {
		t.Fatalf("expected a match")
	}
	if best.ID != "3" {
		t.Fatalf("expected lower id on tie, got %s", best.ID)
	}
	if !approx(score, 1.0) {
		t.Fatalf("expected score 1.0, got %v", score)
	}

	if _, _, ok := BestMatch("Heung-min Son", entries); ok {
		t.Fatalf("expected no match for unrelated name")
	}
	if _, _, ok := BestMatch("Tel", nil); ok {
		t.Fatalf("expected no match for empty entries")
	}
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	first, last := SplitName("Micky van de Ven")
	if first != "Micky" || last != "van de Ven" {
		t.Fatalf("unexpected split: %q %q", first, last)
	}
	first, last = SplitName("Richarlison")
	if first != "" || last != "Richarlison" {
		t.Fatalf("unexpected single-token split: %q %q", first, last)
	}
}
