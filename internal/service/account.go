package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type AccountService interface {
	SaveAccount(ctx context.Context, account *entity.Account) error
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
}

type accountRepo interface {
	Save(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id string) (*entity.Account, error)
}

type accountService struct {
	accountRepo accountRepo
}

func NewAccountService(accountRepo accountRepo) AccountService {
	return &accountService{
		accountRepo: accountRepo,
	}
}

func (that *accountService) SaveAccount(ctx context.Context, account *entity.Account) error {
	account.ID = strings.TrimSpace(account.ID)
	account.Email = strings.TrimSpace(account.Email)

	if account.ID == "" {
		return apperror.ErrInvalidAccount
	}

	if err := that.accountRepo.Save(ctx, account); err != nil {
		return fmt.Errorf("could not save account: %w", err)
	}

	return nil
}

func (that *accountService) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	account, err := that.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get account by id: %w", err)
	}

	return account, nil
}
