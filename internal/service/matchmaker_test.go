package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

func TestMatchmakerService_FindMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns open matches", func(t *testing.T) {
		registry := &mockRegistry{}
		creator := &mockCreator{}
		matchmaker := NewMatchmakerService(testLogger, registry, creator, 10)

		// Given: one open, one closed and one broken label
		registry.On("List", ctx, 0).Return([]entity.MatchListing{
			{MatchID: "m1", Label: `{"open":true,"users":["p1"]}`},
			{MatchID: "m2", Label: `{"open":false,"users":["p2","p3"]}`},
			{MatchID: "m3", Label: `not json`},
		}, nil)

		// When: FindMatch is called
		matchIDs, err := matchmaker.FindMatch(ctx)

		// Then: only the open match is returned and nothing is created
		require.NoError(t, err)
		assert.Equal(t, []string{"m1"}, matchIDs)
		creator.AssertNotCalled(t, "CreateMatch", ctx)
	})

	t.Run("creates a match when none is open", func(t *testing.T) {
		registry := &mockRegistry{}
		creator := &mockCreator{}
		matchmaker := NewMatchmakerService(testLogger, registry, creator, 10)

		registry.On("List", ctx, 0).Return([]entity.MatchListing{}, nil)
		creator.On("CreateMatch", ctx).Return("m9", nil)

		matchIDs, err := matchmaker.FindMatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"m9"}, matchIDs)
	})

	t.Run("closed matches beyond the limit don't hide an open one", func(t *testing.T) {
		registry := &mockRegistry{}
		creator := &mockCreator{}
		matchmaker := NewMatchmakerService(testLogger, registry, creator, 10)

		// Given: ten full matches listed ahead of a waiting one
		listings := make([]entity.MatchListing, 0, 11)
		for i := range 10 {
			listings = append(listings, entity.MatchListing{
				MatchID: fmt.Sprintf("a%02d", i),
				Label:   `{"open":false,"users":["p1","p2"]}`,
			})
		}
		listings = append(listings, entity.MatchListing{MatchID: "zz-open", Label: `{"open":true,"users":["p3"]}`})
		registry.On("List", ctx, 0).Return(listings, nil)

		// When: FindMatch is called
		matchIDs, err := matchmaker.FindMatch(ctx)

		// Then: the waiting match is offered instead of a new one
		require.NoError(t, err)
		assert.Equal(t, []string{"zz-open"}, matchIDs)
		creator.AssertNotCalled(t, "CreateMatch", ctx)
	})

	t.Run("open matches are capped at the limit", func(t *testing.T) {
		registry := &mockRegistry{}
		matchmaker := NewMatchmakerService(testLogger, registry, &mockCreator{}, 2)

		registry.On("List", ctx, 0).Return([]entity.MatchListing{
			{MatchID: "m1", Label: `{"open":true,"users":[]}`},
			{MatchID: "m2", Label: `{"open":false,"users":["p1","p2"]}`},
			{MatchID: "m3", Label: `{"open":true,"users":["p3"]}`},
			{MatchID: "m4", Label: `{"open":true,"users":[]}`},
		}, nil)

		matchIDs, err := matchmaker.FindMatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m3"}, matchIDs)
	})

	t.Run("registry failure", func(t *testing.T) {
		registry := &mockRegistry{}
		matchmaker := NewMatchmakerService(testLogger, registry, &mockCreator{}, 10)

		registry.On("List", ctx, 0).Return(nil, errors.New("connection refused"))

		_, err := matchmaker.FindMatch(ctx)

		require.Error(t, err)
	})
}

func TestMatchmakerService_FindOngoingMatch(t *testing.T) {
	ctx := context.Background()
	registry := &mockRegistry{}
	matchmaker := NewMatchmakerService(testLogger, registry, &mockCreator{}, 10)

	registry.On("FindByUser", ctx, "p1").Return([]entity.MatchListing{{MatchID: "m1", Label: `{"open":false,"users":["p1","p2"]}`}}, nil)
	registry.On("FindByUser", ctx, "p9").Return([]entity.MatchListing{}, nil)

	matchIDs, err := matchmaker.FindOngoingMatch(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, matchIDs)

	matchIDs, err = matchmaker.FindOngoingMatch(ctx, "p9")
	require.NoError(t, err)
	assert.Empty(t, matchIDs)
}
