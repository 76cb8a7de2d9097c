package usecase

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/cache"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

const (
	defaultRosterThreshold = 0.5
	defaultSearchThreshold = 0.6
	defaultMinSearchTerm   = 4
	defaultSearchWorkers   = 4
	defaultRosterCacheTTL  = 6 * time.Hour
)

type IdentityResolverConfig struct {
	RosterThreshold float64
	SearchThreshold float64
	MinSearchTerm   int
	SearchWorkers   int
	RosterCacheTTL  time.Duration
}

func DefaultIdentityResolverConfig() IdentityResolverConfig {
	return IdentityResolverConfig{
		RosterThreshold: defaultRosterThreshold,
		SearchThreshold: defaultSearchThreshold,
		MinSearchTerm:   defaultMinSearchTerm,
		SearchWorkers:   defaultSearchWorkers,
		RosterCacheTTL:  defaultRosterCacheTTL,
	}
}

// IdentityResolver maps a display name to a player id by checking stored
// records, manual mappings, the team roster and finally an external search.
type IdentityResolver struct {
	links    playerlink.Repository
	mappings *identity.ManualMappings
	roster   RosterLookup
	search   PlayerSearch
	rosters  *cache.Store[[]identity.Entry]
	cfg      IdentityResolverConfig
	logger   *logging.Logger
}

func NewIdentityResolver(
	links playerlink.Repository,
	mappings *identity.ManualMappings,
	roster RosterLookup,
	search PlayerSearch,
	cfg IdentityResolverConfig,
	logger *logging.Logger,
) *IdentityResolver {
	defaults := DefaultIdentityResolverConfig()
	if cfg.RosterThreshold <= 0 {
		cfg.RosterThreshold = defaults.RosterThreshold
	}
	if cfg.SearchThreshold <= 0 {
		cfg.SearchThreshold = defaults.SearchThreshold
	}
	if cfg.MinSearchTerm <= 0 {
		cfg.MinSearchTerm = defaults.MinSearchTerm
	}
	if cfg.SearchWorkers <= 0 {
		cfg.SearchWorkers = defaults.SearchWorkers
	}
	if cfg.RosterCacheTTL <= 0 {
		cfg.RosterCacheTTL = defaults.RosterCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &IdentityResolver{
		links:    links,
		mappings: mappings,
		roster:   roster,
		search:   search,
		rosters:  cache.NewStore[[]identity.Entry](cfg.RosterCacheTTL),
		cfg:      cfg,
		logger:   logger,
	}
}

// Resolve never fails; collaborator errors are logged and reported as no match.
func (r *IdentityResolver) Resolve(ctx context.Context, name, teamHint string) (identity.Candidate, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityResolver.Resolve")
	defer span.End()

	normalized := identity.Normalize(name)
	if normalized == "" {
		return identity.Candidate{}, false
	}

	if candidate, ok := r.fromExistingRecords(ctx, normalized); ok {
		return candidate, true
	}
	if mapping, ok := r.mappings.Lookup(name); ok {
		return identity.Candidate{
			PlayerID: mapping.ID,
			Name:     mapping.Name,
			Score:    1,
			Source:   identity.SourceManualMapping,
		}, true
	}
	if teamHint = strings.TrimSpace(teamHint); teamHint != "" {
		if candidate, ok := r.fromRoster(ctx, name, teamHint); ok {
			return candidate, true
		}
	}
	return r.fromSearch(ctx, name)
}

func (r *IdentityResolver) fromExistingRecords(ctx context.Context, normalized string) (identity.Candidate, bool) {
	if r.links == nil {
		return identity.Candidate{}, false
	}
	links, err := r.links.List(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "list player links for identity lookup failed", "error", err)
		return identity.Candidate{}, false
	}

	var (
		best  playerlink.PlayerLink
		found bool
	)
	for _, link := range links {
		if identity.Normalize(link.Name) != normalized {
			continue
		}
		if !found || link.PlayerID < best.PlayerID {
			best, found = link, true
		}
	}
	if !found {
		return identity.Candidate{}, false
	}
	return identity.Candidate{
		PlayerID: best.PlayerID,
		Name:     best.Name,
		Score:    1,
		Source:   identity.SourceExistingRecord,
	}, true
}

func (r *IdentityResolver) fromRoster(ctx context.Context, name, teamID string) (identity.Candidate, bool) {
	if r.roster == nil {
		return identity.Candidate{}, false
	}
	entries, err := r.rosters.GetOrLoad(ctx, teamID, func(ctx context.Context) ([]identity.Entry, error) {
		return r.roster.Squad(ctx, teamID)
	})
	if err != nil {
		r.logger.WarnContext(ctx, "roster lookup failed, falling back to search", "team_id", teamID, "error", err)
		return identity.Candidate{}, false
	}

	entry, score, ok := identity.BestMatch(name, entries)
	if !ok || score <= r.cfg.RosterThreshold {
		return identity.Candidate{}, false
	}
	return identity.Candidate{
		PlayerID: entry.ID,
		Name:     entry.DisplayName(),
		Score:    score,
		Source:   identity.SourceRoster,
	}, true
}

func (r *IdentityResolver) fromSearch(ctx context.Context, name string) (identity.Candidate, bool) {
	if r.search == nil {
		return identity.Candidate{}, false
	}
	terms := SearchTerms(name, r.cfg.MinSearchTerm)
	if len(terms) == 0 {
		r.logger.DebugContext(ctx, "no search term long enough", "name", name)
		return identity.Candidate{}, false
	}

	type termResult struct {
		term    string
		entries []identity.Entry
		err     error
	}

	p := pool.NewWithResults[termResult]().WithMaxGoroutines(r.cfg.SearchWorkers)
	for _, term := range terms {
		term := term
		p.Go(func() termResult {
			entries, err := r.search.Search(ctx, term)
			return termResult{term: term, entries: entries, err: err}
		})
	}

	seen := make(map[string]struct{})
	var candidates []identity.Entry
	for _, res := range p.Wait() {
		if res.err != nil {
			r.logger.WarnContext(ctx, "player search failed", "term", res.term, "error", res.err)
			continue
		}
		for _, entry := range res.entries {
			if entry.ID == "" {
				continue
			}
			if _, dup := seen[entry.ID]; dup {
				continue
			}
			seen[entry.ID] = struct{}{}
			candidates = append(candidates, entry)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	entry, score, ok := identity.BestMatch(name, candidates)
	if !ok || score <= r.cfg.SearchThreshold {
		r.logger.DebugContext(ctx, "no confident search match", "name", name, "candidates", len(candidates), "best_score", score)
		return identity.Candidate{}, false
	}
	return identity.Candidate{
		PlayerID: entry.ID,
		Name:     entry.DisplayName(),
		Score:    score,
		Source:   identity.SourceFuzzySearch,
	}, true
}

// SearchTerms returns the distinct name tokens long enough for the upstream
// search, in their original order.
func SearchTerms(name string, minLength int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range strings.Fields(name) {
		token = strings.Trim(token, ".,;:!?\"'()")
		if utf8.RuneCountInString(token) < minLength {
			continue
		}
		key := strings.ToLower(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, token)
	}
	return out
}
