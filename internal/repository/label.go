package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

const matchesKey = "matches"

type LabelRepository interface {
	Save(ctx context.Context, matchID string, label entity.Label) error
	GetByID(ctx context.Context, matchID string) (string, error)
	DeleteByID(ctx context.Context, matchID string) error
	List(ctx context.Context, limit int) ([]entity.MatchListing, error)
	FindByUser(ctx context.Context, userID string) ([]entity.MatchListing, error)
}

type dbLabel struct {
	client *redis.Client
}

func NewLabelRepository(client *redis.Client) LabelRepository {
	return &dbLabel{
		client: client,
	}
}

func labelKey(matchID string) string {
	return "match:" + matchID + ":label"
}

// matchUsersKey holds every user the match has ever listed.
func matchUsersKey(matchID string) string {
	return "match:" + matchID + ":users"
}

func userMatchesKey(userID string) string {
	return "match:user:" + userID
}

func (that *dbLabel) Save(ctx context.Context, matchID string, label entity.Label) error {
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, labelKey(matchID), label.Encode(), 0)
		pipe.SAdd(ctx, matchesKey, matchID)

		for _, userID := range label.Users {
			pipe.SAdd(ctx, userMatchesKey(userID), matchID)
			pipe.SAdd(ctx, matchUsersKey(matchID), userID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save label: %w", err)
	}

	return nil
}

func (that *dbLabel) GetByID(ctx context.Context, matchID string) (string, error) {
	raw, err := that.client.Get(ctx, labelKey(matchID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrMatchNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get label: %w", err)
	}

	return raw, nil
}

func (that *dbLabel) DeleteByID(ctx context.Context, matchID string) error {
	raw, err := that.GetByID(ctx, matchID)
	if err != nil && !errors.Is(err, apperror.ErrMatchNotFound) {
		return err
	}

	// a broken label still has to be removed
	label, _ := entity.ParseLabel(raw)

	userIDs, err := that.client.SMembers(ctx, matchUsersKey(matchID)).Result()
	if err != nil {
		return fmt.Errorf("failed to get match users: %w", err)
	}

	userIDs = append(userIDs, label.Users...)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, labelKey(matchID), matchUsersKey(matchID))
		pipe.SRem(ctx, matchesKey, matchID)

		for _, userID := range userIDs {
			pipe.SRem(ctx, userMatchesKey(userID), matchID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}

	return nil
}

// List returns up to limit live matches with their raw labels.
func (that *dbLabel) List(ctx context.Context, limit int) ([]entity.MatchListing, error) {
	matchIDs, err := that.client.SMembers(ctx, matchesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	listings, err := that.load(ctx, matchIDs)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}

	return listings, nil
}

// FindByUser returns the matches whose label still lists userID.
func (that *dbLabel) FindByUser(ctx context.Context, userID string) ([]entity.MatchListing, error) {
	matchIDs, err := that.client.SMembers(ctx, userMatchesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user matches: %w", err)
	}

	listings, err := that.load(ctx, matchIDs)
	if err != nil {
		return nil, err
	}

	found := make([]entity.MatchListing, 0, len(listings))
	for _, listing := range listings {
		label, err := entity.ParseLabel(listing.Label)
		if err != nil || !label.HasUser(userID) {
			continue
		}

		found = append(found, listing)
	}

	return found, nil
}

func (that *dbLabel) load(ctx context.Context, matchIDs []string) ([]entity.MatchListing, error) {
	if len(matchIDs) == 0 {
		return []entity.MatchListing{}, nil
	}

	keys := make([]string, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		keys = append(keys, labelKey(matchID))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get labels: %w", err)
	}

	listings := make([]entity.MatchListing, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		listings = append(listings, entity.MatchListing{MatchID: matchIDs[i], Label: raw})
	}

	return listings, nil
}
