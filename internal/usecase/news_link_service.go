package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/felixbhw/n17-dash/internal/domain/extraction"
	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/keylock"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/platform/optional"
)

// NewsExtractor is satisfied by FactExtractor.
type NewsExtractor interface {
	Extract(ctx context.Context, item news.Item, existing []playerlink.PlayerLink) extraction.FactDelta
}

// PlayerResolver is satisfied by IdentityResolver.
type PlayerResolver interface {
	Resolve(ctx context.Context, name, teamHint string) (identity.Candidate, bool)
}

const defaultMaxRejections = 3

type NewsLinkConfig struct {
	HomeTeamID    string
	MaxWorkers    int
	// MaxRejections is how many batches may get an unusable oracle answer for
	// one item before it is marked failed.
	MaxRejections int
}

type ProcessResult struct {
	Processed      int `json:"processed"`
	UpdatedPlayers int `json:"updated_players"`
	Errors         int `json:"errors"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
}

type itemStatus string

const (
	itemProcessed itemStatus = "processed"
	itemSkipped   itemStatus = "skipped"
	itemFailed    itemStatus = "failed"
	itemAbandoned itemStatus = "abandoned"
)

type itemOutcome struct {
	status  itemStatus
	updated []string
}

// NewsLinkService links pending news items to player records.
type NewsLinkService struct {
	newsRepo  news.Repository
	links     playerlink.Repository
	extractor NewsExtractor
	resolver  PlayerResolver
	bodies    BodyFetcher
	mappings  *identity.ManualMappings
	deny      extraction.Denylist
	locks     *keylock.Map
	cfg       NewsLinkConfig
	logger    *logging.Logger
	now       func() time.Time

	runMu sync.Mutex
}

func NewNewsLinkService(
	newsRepo news.Repository,
	links playerlink.Repository,
	extractor NewsExtractor,
	resolver PlayerResolver,
	bodies BodyFetcher,
	mappings *identity.ManualMappings,
	deny extraction.Denylist,
	locks *keylock.Map,
	cfg NewsLinkConfig,
	logger *logging.Logger,
) *NewsLinkService {
	if locks == nil {
		locks = keylock.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.MaxRejections < 1 {
		cfg.MaxRejections = defaultMaxRejections
	}

	return &NewsLinkService{
		newsRepo:  newsRepo,
		links:     links,
		extractor: extractor,
		resolver:  resolver,
		bodies:    bodies,
		mappings:  mappings,
		deny:      deny,
		locks:     locks,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessPending runs one batch over every unprocessed news item. Items whose
// extraction fails stay unprocessed and count as skipped; persistence failures
// count as errors. An item whose oracle answer is unusable in MaxRejections
// batches is marked failed and counted as failed. Runs never overlap.
func (s *NewsLinkService) ProcessPending(ctx context.Context) (ProcessResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsLinkService.ProcessPending")
	defer span.End()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.newsRepo == nil || s.links == nil || s.extractor == nil || s.resolver == nil {
		return ProcessResult{}, errors.Wrap(ErrDependencyUnavailable, "news linker is not fully configured")
	}

	ids, err := s.newsRepo.ListUnprocessedIDs(ctx)
	if err != nil {
		return ProcessResult{}, errors.Wrap(err, "list unprocessed news")
	}
	sort.Strings(ids)

	s.logger.InfoContext(ctx, "processing pending news", "count", len(ids), "workers", s.cfg.MaxWorkers)

	var (
		processed atomic.Int32
		skipped   atomic.Int32
		failed    atomic.Int32
		abandoned atomic.Int32
		updatedMu sync.Mutex
		updated   = make(map[string]struct{})
	)
	record := func(out itemOutcome) {
		switch out.status {
		case itemProcessed:
			processed.Add(1)
		case itemSkipped:
			skipped.Add(1)
		case itemAbandoned:
			abandoned.Add(1)
		default:
			failed.Add(1)
		}
		updatedMu.Lock()
		for _, id := range out.updated {
			updated[id] = struct{}{}
		}
		updatedMu.Unlock()
	}

	if s.cfg.MaxWorkers == 1 || len(ids) <= 1 {
		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}
			record(s.processItem(ctx, id))
		}
	} else if err := s.processParallel(ctx, ids, record); err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{
		Processed:      int(processed.Load()),
		UpdatedPlayers: len(updated),
		Errors:         int(failed.Load()),
		Skipped:        int(skipped.Load()),
		Failed:         int(abandoned.Load()),
	}
	s.logger.InfoContext(ctx, "news batch done",
		"processed", result.Processed,
		"updated_players", result.UpdatedPlayers,
		"errors", result.Errors,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	if err := ctx.Err(); err != nil {
		return result, errors.Wrap(err, "news batch interrupted")
	}
	return result, nil
}

// SubmitNews stores a collected news item for the next run.
func (s *NewsLinkService) SubmitNews(ctx context.Context, item news.Item) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsLinkService.SubmitNews")
	defer span.End()

	if s.newsRepo == nil {
		return errors.Wrap(ErrDependencyUnavailable, "news repository is not configured")
	}
	item.ID = strings.TrimSpace(item.ID)
	if err := item.Validate(); err != nil {
		return errors.Mark(errors.Wrap(err, "validate news item"), ErrInvalidInput)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}
	if err := s.newsRepo.Add(ctx, item); err != nil {
		if errors.Is(err, news.ErrDuplicate) {
			return errors.Mark(err, ErrConflict)
		}
		return errors.Wrapf(err, "add news %s", item.ID)
	}
	return nil
}

func (s *NewsLinkService) processParallel(ctx context.Context, ids []string, record func(itemOutcome)) error {
	workerCount := s.cfg.MaxWorkers
	if workerCount > len(ids) {
		workerCount = len(ids)
	}
	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				return
			}
			record(s.processItem(ctx, id))
		}); err != nil {
			workers.Done()
			workers.Wait()
			return errors.Wrap(err, "submit news item to worker pool")
		}
	}
	workers.Wait()
	return nil
}

func (s *NewsLinkService) processItem(ctx context.Context, newsID string) itemOutcome {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsLinkService.processItem")
	defer span.End()

	logger := s.logger.With("news_id", newsID)

	item, ok, err := s.newsRepo.Get(ctx, newsID)
	if err != nil {
		logger.ErrorContext(ctx, "load news item failed", "error", err)
		return itemOutcome{status: itemFailed}
	}
	if !ok {
		logger.WarnContext(ctx, "news item disappeared before processing")
		return itemOutcome{status: itemSkipped}
	}

	item = s.withBody(ctx, item, logger)

	delta := s.extractor.Extract(ctx, item, s.knownPlayersIn(ctx, item.Text()))
	if !delta.Ok() {
		if delta.Rejected() {
			return s.recordRejection(ctx, item.ID, logger)
		}
		logger.WarnContext(ctx, "skipping news item, extraction failed")
		return itemOutcome{status: itemSkipped}
	}

	delta, dropped := delta.WithoutDenied(s.deny)
	if dropped > 0 {
		logger.InfoContext(ctx, "dropped known sources from player mentions", "count", dropped)
	}

	var (
		updated      []string
		persistError bool
	)
	for _, mention := range delta.Players {
		candidate, ok := s.resolver.Resolve(ctx, mention.Name, s.teamHint(mention))
		if !ok {
			logger.InfoContext(ctx, "could not resolve player, skipping mention", "name", mention.Name)
			continue
		}

		changed, err := s.mergeInto(ctx, item, candidate, mention, delta)
		if err != nil {
			logger.ErrorContext(ctx, "persist player link failed", "player_id", candidate.PlayerID, "error", err)
			persistError = true
			continue
		}
		if changed {
			updated = append(updated, candidate.PlayerID)
		}
	}

	if persistError {
		return itemOutcome{status: itemFailed, updated: updated}
	}
	if err := s.newsRepo.MarkProcessed(ctx, item.ID); err != nil {
		logger.ErrorContext(ctx, "mark news processed failed", "error", err)
		return itemOutcome{status: itemFailed, updated: updated}
	}
	return itemOutcome{status: itemProcessed, updated: updated}
}

// recordRejection counts an unusable oracle answer. The item stays pending
// until the limit is reached, then it is marked failed for good.
func (s *NewsLinkService) recordRejection(ctx context.Context, newsID string, logger *logging.Logger) itemOutcome {
	rejections, err := s.newsRepo.RecordRejection(ctx, newsID)
	if err != nil {
		logger.ErrorContext(ctx, "record extraction rejection failed", "error", err)
		return itemOutcome{status: itemSkipped}
	}
	if rejections < s.cfg.MaxRejections {
		logger.WarnContext(ctx, "skipping news item, oracle response rejected", "rejections", rejections, "max_rejections", s.cfg.MaxRejections)
		return itemOutcome{status: itemSkipped}
	}
	if err := s.newsRepo.MarkFailed(ctx, newsID); err != nil {
		logger.ErrorContext(ctx, "mark news failed returned an error", "error", err)
		return itemOutcome{status: itemSkipped}
	}
	logger.ErrorContext(ctx, "giving up on news item after repeated rejected responses", "rejections", rejections)
	return itemOutcome{status: itemAbandoned}
}

// mergeInto runs load-merge-save for one player under its lock. It reports
// false when the record already holds an event from this news item.
func (s *NewsLinkService) mergeInto(
	ctx context.Context,
	item news.Item,
	candidate identity.Candidate,
	mention extraction.PlayerMention,
	delta extraction.FactDelta,
) (bool, error) {
	unlock := s.locks.Lock(candidate.PlayerID)
	defer unlock()

	current, found, err := s.links.Get(ctx, candidate.PlayerID)
	if err != nil {
		return false, errors.Wrapf(err, "load player link %s", candidate.PlayerID)
	}
	if found && current.HasProvenance(item.ID) {
		return false, nil
	}

	playerDelta := delta.ForPlayer(candidate.PlayerID, candidate.Name, int(item.Tier))
	if !playerDelta.Event.IsSet() {
		// Every merge leaves a provenance-carrying event behind.
		confidence, _ := delta.Confidence.Get()
		playerDelta.Event = optional.Of(playerlink.EventSuggestion{
			Type:       playerlink.EventTypeNews,
			Details:    strings.TrimSpace(item.Title),
			Confidence: confidence,
		})
	}
	if club := strings.TrimSpace(mention.CurrentClub); club != "" {
		playerDelta.RelatedClubs = append([]playerlink.RelatedClub{{Name: club, Role: playerlink.RoleCurrent}}, playerDelta.RelatedClubs...)
	}

	var base *playerlink.PlayerLink
	if found {
		base = &current
	}
	merged := playerlink.Merge(base, playerDelta, item.ID, s.now().UTC())
	if err := s.links.Save(ctx, merged); err != nil {
		return false, errors.Wrapf(err, "save player link %s", candidate.PlayerID)
	}
	return true, nil
}

func (s *NewsLinkService) teamHint(mention extraction.PlayerMention) string {
	if mention.Role == extraction.MentionCurrent && s.cfg.HomeTeamID != "" {
		return s.cfg.HomeTeamID
	}
	if teamID, ok := s.mappings.TeamForClub(mention.CurrentClub); ok {
		return teamID
	}
	return ""
}

func (s *NewsLinkService) withBody(ctx context.Context, item news.Item, logger *logging.Logger) news.Item {
	if strings.TrimSpace(item.Body) != "" || strings.TrimSpace(item.URL) == "" || s.bodies == nil {
		return item
	}
	body, err := s.bodies.FetchBody(ctx, item.URL)
	if err != nil {
		logger.WarnContext(ctx, "fetch article body failed, using title only", "url", item.URL, "error", err)
		return item
	}
	return item.WithBody(body)
}

// knownPlayersIn returns stored records whose name appears in the text.
func (s *NewsLinkService) knownPlayersIn(ctx context.Context, text string) []playerlink.PlayerLink {
	links, err := s.links.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "list player links for context failed", "error", err)
		return nil
	}
	haystack := " " + identity.Normalize(text) + " "
	var out []playerlink.PlayerLink
	for _, link := range links {
		name := identity.Normalize(link.Name)
		if name != "" && strings.Contains(haystack, " "+name+" ") {
			out = append(out, link)
		}
	}
	return out
}
