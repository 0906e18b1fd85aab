package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

func TestAccountService_SaveAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and saves", func(t *testing.T) {
		repo := &mockAccounts{}
		accountService := NewAccountService(repo)

		repo.On("Save", ctx, &entity.Account{ID: "p1", Email: "p1@example.com"}).Return(nil)

		err := accountService.SaveAccount(ctx, &entity.Account{ID: " p1 ", Email: "p1@example.com "})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an empty id", func(t *testing.T) {
		accountService := NewAccountService(&mockAccounts{})

		err := accountService.SaveAccount(ctx, &entity.Account{Email: "p1@example.com"})

		assert.ErrorIs(t, err, apperror.ErrInvalidAccount)
	})
}
