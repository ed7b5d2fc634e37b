package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const adGroupsTable = "ad_groups"

type AdGroupRepository interface {
	GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.AdGroup, error)
	ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.AdGroup, error)
	Insert(adGroup *domain.AdGroup) error
	Update(adGroup *domain.AdGroup) error
}

type adGroupRepository struct {
	conn *postgres.Connection
}

func NewAdGroupRepository(conn *postgres.Connection) AdGroupRepository {
	return &adGroupRepository{
		conn: conn,
	}
}

const adGroupColumns = "id, account_id, provider, external_id, campaign_id, name, status, metadata, created_at, updated_at"

func (r *adGroupRepository) GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.AdGroup, error) {
	querySQL, args, err := squirrel.
		Select(adGroupColumns).
		From(adGroupsTable).
		Where(squirrel.Eq{"account_id": accountID, "provider": provider, "external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	adGroup, err := deserializeAdGroup(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return adGroup, nil
}

func (r *adGroupRepository) ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.AdGroup, error) {
	querySQL, args, err := squirrel.
		Select(adGroupColumns).
		From(adGroupsTable).
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

	adGroups := make([]*domain.AdGroup, 0)

	for rows.Next() {
		adGroup, err := deserializeAdGroup(rows.Scan)
		if err != nil {
			return nil, err
		}
		adGroups = append(adGroups, adGroup)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return adGroups, nil
}

func deserializeAdGroup(scan func(dest ...any) error) (*domain.AdGroup, error) {
	adGroup := &domain.AdGroup{}

	var metadataJSON []byte

	if err := scan(
		&adGroup.ID,
		&adGroup.AccountID,
		&adGroup.Provider,
		&adGroup.ExternalID,
		&adGroup.CampaignID,
		&adGroup.Name,
		&adGroup.Status,
		&metadataJSON,
		&adGroup.CreatedAt,
		&adGroup.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &adGroup.Metadata); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o metadata: %w", err)
		}
	}

	return adGroup, nil
}

func (r *adGroupRepository) Insert(adGroup *domain.AdGroup) error {
	if adGroup.ID == "" {
		return errors.New("ID is required")
	}

	metadataJSON, err := serializeMetadata(adGroup.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(adGroupsTable).
		Columns("id", "account_id", "provider", "external_id", "campaign_id", "name", "status", "metadata").
		Values(
			adGroup.ID,
			adGroup.AccountID,
			adGroup.Provider,
			adGroup.ExternalID,
			adGroup.CampaignID,
			adGroup.Name,
			adGroup.Status,
			metadataJSON,
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

func (r *adGroupRepository) Update(adGroup *domain.AdGroup) error {
	metadataJSON, err := serializeMetadata(adGroup.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.
		Update(adGroupsTable).
		Set("name", adGroup.Name).
		Set("status", adGroup.Status).
		Set("metadata", metadataJSON).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": adGroup.ID}).
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
		return errors.New("ad group not found")
	}

	return nil
}
