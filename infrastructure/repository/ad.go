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

const adsTable = "ads"

type AdRepository interface {
	GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.Ad, error)
	ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.Ad, error)
	Insert(ad *domain.Ad) error
	Update(ad *domain.Ad) error
}

type adRepository struct {
	conn *postgres.Connection
}

func NewAdRepository(conn *postgres.Connection) AdRepository {
	return &adRepository{
		conn: conn,
	}
}

const adColumns = "id, account_id, provider, external_id, ad_group_id, name, status, creative, metadata, created_at, updated_at"

func (r *adRepository) GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.Ad, error) {
	querySQL, args, err := squirrel.
		Select(adColumns).
		From(adsTable).
		Where(squirrel.Eq{"account_id": accountID, "provider": provider, "external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	ad, err := deserializeAd(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return ad, nil
}

func (r *adRepository) ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.Ad, error) {
	querySQL, args, err := squirrel.
		Select(adColumns).
		From(adsTable).
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

	ads := make([]*domain.Ad, 0)

	for rows.Next() {
		ad, err := deserializeAd(rows.Scan)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return ads, nil
}

func deserializeAd(scan func(dest ...any) error) (*domain.Ad, error) {
	ad := &domain.Ad{}

	var creativeJSON, metadataJSON []byte

	if err := scan(
		&ad.ID,
		&ad.AccountID,
		&ad.Provider,
		&ad.ExternalID,
		&ad.AdGroupID,
		&ad.Name,
		&ad.Status,
		&creativeJSON,
		&metadataJSON,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(creativeJSON) > 0 {
		if err := json.Unmarshal(creativeJSON, &ad.Creative); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o creative: %w", err)
		}
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &ad.Metadata); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o metadata: %w", err)
		}
	}

	return ad, nil
}

func (r *adRepository) Insert(ad *domain.Ad) error {
	if ad.ID == "" {
		return errors.New("ID is required")
	}

	creativeJSON, err := serializeMetadata(ad.Creative)
	if err != nil {
		return err
	}

	metadataJSON, err := serializeMetadata(ad.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(adsTable).
		Columns("id", "account_id", "provider", "external_id", "ad_group_id", "name", "status", "creative", "metadata").
		Values(
			ad.ID,
			ad.AccountID,
			ad.Provider,
			ad.ExternalID,
			ad.AdGroupID,
			ad.Name,
			ad.Status,
			creativeJSON,
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

func (r *adRepository) Update(ad *domain.Ad) error {
	creativeJSON, err := serializeMetadata(ad.Creative)
	if err != nil {
		return err
	}

	metadataJSON, err := serializeMetadata(ad.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.
		Update(adsTable).
		Set("name", ad.Name).
		Set("status", ad.Status).
		Set("creative", creativeJSON).
		Set("metadata", metadataJSON).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ad.ID}).
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
		return errors.New("ad not found")
	}

	return nil
}
