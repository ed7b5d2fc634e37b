package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const adAccountsTable = "ad_accounts"

type AdAccountRepository interface {
	GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.AdAccount, error)
	ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.AdAccount, error)
	Insert(adAccount *domain.AdAccount) error
	Update(adAccount *domain.AdAccount) error
}

type adAccountRepository struct {
	conn *postgres.Connection
}

func NewAdAccountRepository(conn *postgres.Connection) AdAccountRepository {
	return &adAccountRepository{
		conn: conn,
	}
}

const adAccountColumns = "id, account_id, provider, external_id, name, currency, timezone, status, created_at, updated_at"

func (r *adAccountRepository) GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.AdAccount, error) {
	querySQL, args, err := squirrel.
		Select(adAccountColumns).
		From(adAccountsTable).
		Where(squirrel.Eq{"account_id": accountID, "provider": provider, "external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	adAccount := &domain.AdAccount{}
	if err := scanAdAccount(row.Scan, adAccount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return adAccount, nil
}

func (r *adAccountRepository) ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.AdAccount, error) {
	querySQL, args, err := squirrel.
		Select(adAccountColumns).
		From(adAccountsTable).
		Where(squirrel.Eq{"account_id": accountID, "provider": provider}).
		OrderBy("external_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(querySQL, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	adAccounts := make([]*domain.AdAccount, 0)

	for rows.Next() {
		adAccount := &domain.AdAccount{}
		if err := scanAdAccount(rows.Scan, adAccount); err != nil {
			return nil, err
		}
		adAccounts = append(adAccounts, adAccount)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return adAccounts, nil
}

func scanAdAccount(scan func(dest ...any) error, adAccount *domain.AdAccount) error {
	return scan(
		&adAccount.ID,
		&adAccount.AccountID,
		&adAccount.Provider,
		&adAccount.ExternalID,
		&adAccount.Name,
		&adAccount.Currency,
		&adAccount.Timezone,
		&adAccount.Status,
		&adAccount.CreatedAt,
		&adAccount.UpdatedAt,
	)
}

func (r *adAccountRepository) Insert(adAccount *domain.AdAccount) error {
	if adAccount.ID == "" {
		return errors.New("ID is required")
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(adAccountsTable).
		Columns("id", "account_id", "provider", "external_id", "name", "currency", "timezone", "status").
		Values(
			adAccount.ID,
			adAccount.AccountID,
			adAccount.Provider,
			adAccount.ExternalID,
			adAccount.Name,
			adAccount.Currency,
			adAccount.Timezone,
			adAccount.Status,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (r *adAccountRepository) Update(adAccount *domain.AdAccount) error {
	sqlQuery, args, err := squirrel.
		Update(adAccountsTable).
		Set("name", adAccount.Name).
		Set("currency", adAccount.Currency).
		Set("timezone", adAccount.Timezone).
		Set("status", adAccount.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": adAccount.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("ad account not found")
	}

	return nil
}
