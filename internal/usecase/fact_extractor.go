package usecase

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/domain/extraction"
	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

// FactExtractor asks the oracle for a structured reading of one news item.
type FactExtractor struct {
	oracle  Oracle
	decoder *extraction.Decoder
	deny    extraction.Denylist
	logger  *logging.Logger
}

func NewFactExtractor(oracle Oracle, deny extraction.Denylist, logger *logging.Logger) *FactExtractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &FactExtractor{
		oracle:  oracle,
		decoder: extraction.NewDecoder(),
		deny:    deny,
		logger:  logger,
	}
}

// Extract returns an empty delta (Ok() == false) when the oracle call or the
// response shape fails. A bad shape is also Rejected(). Errors never leave
// this method.
func (e *FactExtractor) Extract(ctx context.Context, item news.Item, existing []playerlink.PlayerLink) extraction.FactDelta {
	ctx, span := startUsecaseSpan(ctx, "usecase.FactExtractor.Extract")
	defer span.End()

	delta, err := e.extract(ctx, item, existing)
	if err != nil {
		e.logger.WarnContext(ctx, "fact extraction failed", "news_id", item.ID, "error", err)
		if errors.Is(err, extraction.ErrInvalidShape) {
			return extraction.Rejected()
		}
		return extraction.FactDelta{}
	}
	return delta
}

func (e *FactExtractor) extract(ctx context.Context, item news.Item, existing []playerlink.PlayerLink) (extraction.FactDelta, error) {
	if e.oracle == nil {
		return extraction.FactDelta{}, errors.Wrap(ErrDependencyUnavailable, "oracle is not configured")
	}

	raw, err := e.oracle.Complete(ctx,
		extraction.Instructions(e.deny),
		extraction.ContextText(item, existing),
		extraction.ShapeHint,
	)
	if err != nil {
		return extraction.FactDelta{}, errors.Mark(errors.Wrap(err, "oracle completion"), ErrExtractionFailed)
	}

	delta, err := e.decoder.Decode(raw)
	if err != nil {
		return extraction.FactDelta{}, errors.Mark(err, ErrExtractionFailed)
	}
	return delta, nil
}
