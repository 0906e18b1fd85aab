package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match-server/internal/entity"
)

type AccountRepository interface {
	// Save creates the account or replaces its email.
	Save(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id string) (*entity.Account, error)
}

type accountRepository struct {
	conn *sql.DB
}

func NewAccountRepository(conn *sql.DB) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (that *accountRepository) Save(ctx context.Context, account *entity.Account) error {
	query := `INSERT INTO accounts (id, email) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email`

	_, err := that.conn.ExecContext(ctx, query, account.ID, account.Email)
	if err != nil {
		return fmt.Errorf("can't save account: %w", err)
	}

	return nil
}

func (that *accountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	query := `SELECT id, email FROM accounts WHERE id = ?`

	var account entity.Account

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&account.ID, &account.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find account: %w", err)
	}

	return &account, nil
}
