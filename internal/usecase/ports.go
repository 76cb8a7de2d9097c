package usecase

import (
	"context"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
)

// Oracle is the text-generation model used for fact extraction. It returns
// the raw JSON object produced by the model.
type Oracle interface {
	Complete(ctx context.Context, instructions, contextText, shapeHint string) ([]byte, error)
}

// RosterLookup lists the current squad of a team.
type RosterLookup interface {
	Squad(ctx context.Context, teamID string) ([]identity.Entry, error)
}

// PlayerSearch queries an external player database by name.
type PlayerSearch interface {
	Search(ctx context.Context, term string) ([]identity.Entry, error)
}

// BodyFetcher loads the article text behind a news URL.
type BodyFetcher interface {
	FetchBody(ctx context.Context, url string) (string, error)
}
