package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type mockAccounts struct {
	mock.Mock
}

func (that *mockAccounts) Save(ctx context.Context, account *entity.Account) error {
	args := that.Called(ctx, account)
	return args.Error(0)
}

func (that *mockAccounts) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	args := that.Called(ctx, id)

	account, _ := args.Get(0).(*entity.Account)

	return account, args.Error(1)
}

type mockLeaderboard struct {
	mock.Mock
}

func (that *mockLeaderboard) Increment(ctx context.Context, leaderboardID, ownerID string, score int64) error {
	args := that.Called(ctx, leaderboardID, ownerID, score)
	return args.Error(0)
}

func (that *mockLeaderboard) Top(ctx context.Context, leaderboardID string, limit int) ([]entity.LeaderboardRecord, error) {
	args := that.Called(ctx, leaderboardID, limit)

	records, _ := args.Get(0).([]entity.LeaderboardRecord)

	return records, args.Error(1)
}

type mockRegistry struct {
	mock.Mock
}

func (that *mockRegistry) List(ctx context.Context, limit int) ([]entity.MatchListing, error) {
	args := that.Called(ctx, limit)

	listings, _ := args.Get(0).([]entity.MatchListing)

	return listings, args.Error(1)
}

func (that *mockRegistry) FindByUser(ctx context.Context, userID string) ([]entity.MatchListing, error) {
	args := that.Called(ctx, userID)

	listings, _ := args.Get(0).([]entity.MatchListing)

	return listings, args.Error(1)
}

type mockCreator struct {
	mock.Mock
}

func (that *mockCreator) CreateMatch(ctx context.Context) (string, error) {
	args := that.Called(ctx)
	return args.String(0), args.Error(1)
}
