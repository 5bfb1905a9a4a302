package repository

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

type postgresAccountRepository struct {
	conn Connection
}

func NewPostgresAccount(conn Connection) domain.AccountRepository {
	return &postgresAccountRepository{conn: conn}
}

// Create implements domain.AccountRepository.
func (p *postgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	id := uuid.NewString()
	query := `
		INSERT INTO accounts (id, name, code, role)
		VALUES ($1, $2, $3, $4)`
	_, err := p.conn.Exec(ctx, query, id, account.Name, account.Code, account.Role)
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// GetByName implements domain.AccountRepository.
func (p *postgresAccountRepository) GetByName(ctx context.Context, name string) (domain.Account, error) {
	var account domain.Account
	err := pgxscan.Get(ctx, p.conn, &account, "SELECT * FROM accounts WHERE name = $1", name)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// GetAll implements domain.AccountRepository.
func (p *postgresAccountRepository) GetAll(ctx context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	err := pgxscan.Select(ctx, p.conn, &accounts, "SELECT * FROM accounts ORDER BY name")
	if err != nil {
		return accounts, err
	}
	sortAccounts(accounts)
	return accounts, nil
}

// Delete implements domain.AccountRepository.
func (p *postgresAccountRepository) Delete(ctx context.Context, id string) error {
	_, err := p.conn.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	return err
}
