package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"

	"github.com/felixbhw/n17-dash/internal/domain/extraction"
	"github.com/felixbhw/n17-dash/internal/domain/news"
	usecasemock "github.com/felixbhw/n17-dash/internal/mocks/usecase"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func TestFactExtractor_Extract(t *testing.T) {
	t.Parallel()

	oracle := usecasemock.NewOracle(t)
	oracle.
		On("Complete",
			mock.Anything,
			mock.MatchedBy(func(instructions string) bool { return strings.Contains(instructions, "Fabrizio Romano") }),
			mock.MatchedBy(func(text string) bool { return strings.Contains(text, "Title: Tel medical") }),
			extraction.ShapeHint,
		).
		Return([]byte(`{"players": [{"name": "Mathys Tel"}], "transfer_status": "developing"}`), nil).
		Once()

	extractor := NewFactExtractor(oracle, extraction.DefaultDenylist(), logging.NewNop())
	delta := extractor.Extract(context.Background(), news.Item{ID: "r-1", Title: "Tel medical"}, nil)
	if !delta.Ok() {
		t.Fatalf("expected ok delta")
	}
	if len(delta.Players) != 1 || delta.Players[0].Name != "Mathys Tel" {
		t.Fatalf("unexpected players: %+v", delta.Players)
	}
}

func TestFactExtractor_FailuresBecomeEmptyDelta(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		raw      []byte
		err      error
		rejected bool
	}{
		"oracle error":   {err: errors.New("429 too many requests")},
		"malformed json": {raw: []byte(`{"players": [`), rejected: true},
		"wrong shape":    {raw: []byte(`{"players": [{"name": ""}]}`), rejected: true},
		"unknown status": {raw: []byte(`{"transfer_status": "imminent"}`), rejected: true},
	}

	for name, tc := range cases {
		oracle := usecasemock.NewOracle(t)
		oracle.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tc.raw, tc.err).Once()

		extractor := NewFactExtractor(oracle, extraction.DefaultDenylist(), logging.NewNop())
		delta := extractor.Extract(context.Background(), news.Item{ID: "r-1", Title: "x"}, nil)
		if delta.Ok() {
			t.Fatalf("%s: expected empty delta", name)
		}
		if delta.Rejected() != tc.rejected {
			t.Fatalf("%s: expected rejected=%v", name, tc.rejected)
		}
	}
}

func TestFactExtractor_MissingOracle(t *testing.T) {
	t.Parallel()

	extractor := NewFactExtractor(nil, extraction.DefaultDenylist(), logging.NewNop())
	if delta := extractor.Extract(context.Background(), news.Item{ID: "r-1", Title: "x"}, nil); delta.Ok() || delta.Rejected() {
		t.Fatalf("expected empty, unrejected delta without an oracle")
	}
}
