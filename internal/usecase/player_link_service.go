package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/keylock"
)

// PlayerLinkService serves reads and operator corrections of player links.
type PlayerLinkService struct {
	links playerlink.Repository
	locks *keylock.Map
	now   func() time.Time
}

func NewPlayerLinkService(links playerlink.Repository, locks *keylock.Map) *PlayerLinkService {
	if locks == nil {
		locks = keylock.New()
	}
	return &PlayerLinkService{links: links, locks: locks, now: time.Now}
}

func (s *PlayerLinkService) List(ctx context.Context) ([]playerlink.PlayerLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.List")
	defer span.End()

	links, err := s.links.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list player links")
	}
	return links, nil
}

func (s *PlayerLinkService) Get(ctx context.Context, playerID string) (playerlink.PlayerLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.Get")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return playerlink.PlayerLink{}, errors.Wrap(ErrInvalidInput, "player id is required")
	}
	link, ok, err := s.links.Get(ctx, playerID)
	if err != nil {
		return playerlink.PlayerLink{}, errors.Wrapf(err, "get player link %s", playerID)
	}
	if !ok {
		return playerlink.PlayerLink{}, errors.Wrapf(ErrNotFound, "player link %s", playerID)
	}
	return link, nil
}

// ResetStatus sets the status directly, including lowering it.
func (s *PlayerLinkService) ResetStatus(ctx context.Context, playerID, status string) (playerlink.PlayerLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.ResetStatus")
	defer span.End()

	parsed, err := playerlink.ParseStatus(status)
	if err != nil {
		return playerlink.PlayerLink{}, errors.Mark(err, ErrInvalidInput)
	}
	return s.update(ctx, playerID, func(link playerlink.PlayerLink, now time.Time) (playerlink.PlayerLink, error) {
		return link.ResetStatus(parsed, now)
	})
}

func (s *PlayerLinkService) DeleteEvent(ctx context.Context, playerID string, index int) (playerlink.PlayerLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.DeleteEvent")
	defer span.End()

	return s.update(ctx, playerID, func(link playerlink.PlayerLink, now time.Time) (playerlink.PlayerLink, error) {
		out, err := link.DeleteEvent(index, now)
		if err != nil {
			return playerlink.PlayerLink{}, errors.Mark(err, ErrInvalidInput)
		}
		return out, nil
	})
}

func (s *PlayerLinkService) update(
	ctx context.Context,
	playerID string,
	apply func(playerlink.PlayerLink, time.Time) (playerlink.PlayerLink, error),
) (playerlink.PlayerLink, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return playerlink.PlayerLink{}, errors.Wrap(ErrInvalidInput, "player id is required")
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	link, ok, err := s.links.Get(ctx, playerID)
	if err != nil {
		return playerlink.PlayerLink{}, errors.Wrapf(err, "get player link %s", playerID)
	}
	if !ok {
		return playerlink.PlayerLink{}, errors.Wrapf(ErrNotFound, "player link %s", playerID)
	}

	updated, err := apply(link, s.now().UTC())
	if err != nil {
		return playerlink.PlayerLink{}, err
	}
	if err := s.links.Save(ctx, updated); err != nil {
		return playerlink.PlayerLink{}, errors.Wrapf(err, "save player link %s", playerID)
	}
	return updated, nil
}
