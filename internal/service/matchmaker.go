package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type MatchmakerService interface {
	FindMatch(ctx context.Context) ([]string, error)
	FindOngoingMatch(ctx context.Context, userID string) ([]string, error)
}

type matchRegistry interface {
	List(ctx context.Context, limit int) ([]entity.MatchListing, error)
	FindByUser(ctx context.Context, userID string) ([]entity.MatchListing, error)
}

type matchCreator interface {
	CreateMatch(ctx context.Context) (string, error)
}

type matchmakerService struct {
	logger   *slog.Logger
	registry matchRegistry
	creator  matchCreator
	limit    int
}

func NewMatchmakerService(logger *slog.Logger, registry matchRegistry, creator matchCreator, limit int) MatchmakerService {
	return &matchmakerService{
		logger:   logger.With("component", "matchmaker"),
		registry: registry,
		creator:  creator,
		limit:    limit,
	}
}

// FindMatch returns up to limit open matches, creating one when there are none.
// Labels are filtered before the limit applies, so closed matches never hide an open one.
func (that *matchmakerService) FindMatch(ctx context.Context) ([]string, error) {
	listings, err := that.registry.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	matchIDs := OpenMatches(that.logger, listings)
	if len(matchIDs) > 0 {
		if that.limit > 0 && len(matchIDs) > that.limit {
			matchIDs = matchIDs[:that.limit]
		}

		return matchIDs, nil
	}

	matchID, err := that.creator.CreateMatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return []string{matchID}, nil
}

func (that *matchmakerService) FindOngoingMatch(ctx context.Context, userID string) ([]string, error) {
	listings, err := that.registry.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user matches: %w", err)
	}

	matchIDs := make([]string, 0, len(listings))
	for _, listing := range listings {
		matchIDs = append(matchIDs, listing.MatchID)
	}

	return matchIDs, nil
}

// OpenMatches keeps the listings whose label is open. A label that can't be parsed is not open.
func OpenMatches(logger *slog.Logger, listings []entity.MatchListing) []string {
	matchIDs := make([]string, 0, len(listings))

	for _, listing := range listings {
		label, err := entity.ParseLabel(listing.Label)
		if err != nil {
			logger.Warn("skipping match with broken label", "matchID", listing.MatchID, "error", err)
			continue
		}

		if label.Open {
			matchIDs = append(matchIDs, listing.MatchID)
		}
	}

	return matchIDs
}
