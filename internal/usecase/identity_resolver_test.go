package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/infrastructure/repository/memory"
	usecasemock "github.com/felixbhw/n17-dash/internal/mocks/usecase"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func newTestMappings(t *testing.T) *identity.ManualMappings {
	t.Helper()
	mappings, err := identity.NewManualMappings(map[string]identity.Mapping{
		"Mathys Tel": {ID: "270510", Name: "Mathys Tel", Club: "Bayern Munich", TeamID: "157"},
	})
	if err != nil {
		t.Fatalf("build mappings: %v", err)
	}
	return mappings
}

func TestIdentityResolver_ExistingRecordWins(t *testing.T) {
	t.Parallel()

	links := memory.NewPlayerLinkRepository(playerlink.PlayerLink{PlayerID: "18", Name: "Pedro Porro Sánchez", Status: playerlink.StatusRumors})
	roster := usecasemock.NewRosterLookup(t)
	search := usecasemock.NewPlayerSearch(t)

	resolver := NewIdentityResolver(links, newTestMappings(t), roster, search, IdentityResolverConfig{}, logging.NewNop())
	got, ok := resolver.Resolve(context.Background(), "pedro porro  sanchez", "47")
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.PlayerID != "18" || got.Source != identity.SourceExistingRecord || got.Score != 1 {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestIdentityResolver_ManualMapping(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), newTestMappings(t), nil, nil, IdentityResolverConfig{}, logging.NewNop())
	got, ok := resolver.Resolve(context.Background(), "MATHYS TEL", "")
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.PlayerID != "270510" || got.Source != identity.SourceManualMapping {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestIdentityResolver_RosterIsCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	roster := usecasemock.NewRosterLookup(t)
	roster.
		On("Squad", mock.Anything, "47").
		Return([]identity.Entry{
			{ID: "1", Firstname: "Dejan", Lastname: "Kulusevski"},
			{ID: "2", Firstname: "James", Lastname: "Maddison"},
		}, nil).
		Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, roster, nil, IdentityResolverConfig{}, logging.NewNop())

	got, ok := resolver.Resolve(ctx, "D. Kulusevski", "47")
	if !ok || got.PlayerID != "1" || got.Source != identity.SourceRoster {
		t.Fatalf("unexpected roster candidate: %+v ok=%v", got, ok)
	}
	if got.Name != "Dejan Kulusevski" {
		t.Fatalf("expected full display name, got %q", got.Name)
	}

	got, ok = resolver.Resolve(ctx, "Maddison", "47")
	if !ok || got.PlayerID != "2" {
		t.Fatalf("unexpected second roster candidate: %+v ok=%v", got, ok)
	}
}

func TestIdentityResolver_RosterFailureFallsBackToSearch(t *testing.T) {
	t.Parallel()

	roster := usecasemock.NewRosterLookup(t)
	roster.On("Squad", mock.Anything, "47").Return(nil, errors.New("upstream 503")).Once()
	search := usecasemock.NewPlayerSearch(t)
	search.
		On("Search", mock.Anything, "Mathys").
		Return([]identity.Entry{{ID: "270510", Name: "M. Tel", Firstname: "Mathys", Lastname: "Tel"}}, nil).
		Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, roster, search, IdentityResolverConfig{}, logging.NewNop())
	got, ok := resolver.Resolve(context.Background(), "Mathys Tel", "47")
	if !ok {
		t.Fatalf("expected search fallback to match")
	}
	if got.PlayerID != "270510" || got.Source != identity.SourceFuzzySearch {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestIdentityResolver_SearchBelowThreshold(t *testing.T) {
	t.Parallel()

	jones := []identity.Entry{{ID: "77", Firstname: "John", Lastname: "Jones"}}
	search := usecasemock.NewPlayerSearch(t)
	search.On("Search", mock.Anything, "John").Return(jones, nil).Once()
	search.On("Search", mock.Anything, "Smith").Return(jones, nil).Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, nil, search, IdentityResolverConfig{}, logging.NewNop())
	if got, ok := resolver.Resolve(context.Background(), "John Smith", ""); ok {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestIdentityResolver_ShortTermsSkipSearch(t *testing.T) {
	t.Parallel()

	search := usecasemock.NewPlayerSearch(t)
	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, nil, search, IdentityResolverConfig{}, logging.NewNop())
	if _, ok := resolver.Resolve(context.Background(), "M. Tel", ""); ok {
		t.Fatalf("expected no match without a qualifying search term")
	}
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestIdentityResolver_SearchTermFailureIsIsolated(t *testing.T) {
	t.Parallel()

	search := usecasemock.NewPlayerSearch(t)
	search.On("Search", mock.Anything, "Kevin").Return(nil, errors.New("rate limited")).Once()
	search.
		On("Search", mock.Anything, "Danso").
		Return([]identity.Entry{{ID: "100", Firstname: "Kevin", Lastname: "Danso"}}, nil).
		Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, nil, search, IdentityResolverConfig{}, logging.NewNop())
	got, ok := resolver.Resolve(context.Background(), "Kevin Danso", "")
	if !ok || got.PlayerID != "100" {
		t.Fatalf("expected match from the surviving term, got %+v ok=%v", got, ok)
	}
}

func TestSearchTerms(t *testing.T) {
	t.Parallel()

	got := SearchTerms("M. Tel Mathys mathys (Bergvall)", 4)
	want := []string{"Mathys", "Bergvall"}
	if len(got) != len(want) {
		t.Fatalf("unexpected terms: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected terms: %v", got)
		}
	}
}

func TestIdentityResolver_SearchScoreAtThresholdIsRejected(t *testing.T) {
	t.Parallel()

	search := usecasemock.NewPlayerSearch(t)
	search.
		On("Search", mock.Anything, "Kaiii").
		Return([]identity.Entry{{ID: "270510", Firstname: "Mathys", Lastname: "Tel"}}, nil).
		Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, nil, search, IdentityResolverConfig{}, logging.NewNop())
	if got, ok := resolver.Resolve(context.Background(), "Kaiii Tel", ""); ok {
		t.Fatalf("a score of exactly 0.6 must not match, got %+v", got)
	}
}

func TestIdentityResolver_RosterScoreAtThresholdIsRejected(t *testing.T) {
	t.Parallel()

	roster := usecasemock.NewRosterLookup(t)
	roster.
		On("Squad", mock.Anything, "47").
		Return([]identity.Entry{{ID: "270510", Firstname: "Mathys", Lastname: "Tel"}}, nil).
		Once()

	resolver := NewIdentityResolver(memory.NewPlayerLinkRepository(), nil, roster, nil, IdentityResolverConfig{}, logging.NewNop())
	if got, ok := resolver.Resolve(context.Background(), "M. Te", "47"); ok {
		t.Fatalf("a roster score of exactly 0.5 must not match, got %+v", got)
	}
}
