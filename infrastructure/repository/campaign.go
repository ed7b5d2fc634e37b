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

const campaignsTable = "campaigns"

type CampaignRepository interface {
	GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.Campaign, error)
	ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.Campaign, error)
	Insert(campaign *domain.Campaign) error
	Update(campaign *domain.Campaign) error
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

const campaignColumns = "id, account_id, provider, external_id, ad_account_id, name, status, metadata, created_at, updated_at"

func (r *campaignRepository) GetByNaturalKey(accountID string, provider domain.Provider, externalID string) (*domain.Campaign, error) {
	querySQL, args, err := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
		Where(squirrel.Eq{"account_id": accountID, "provider": provider, "external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	campaign, err := deserializeCampaign(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return campaign, nil
}

func (r *campaignRepository) ListByAccountAndProvider(accountID string, provider domain.Provider) ([]*domain.Campaign, error) {
	querySQL, args, err := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
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

	campaigns := make([]*domain.Campaign, 0)

	for rows.Next() {
		campaign, err := deserializeCampaign(rows.Scan)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return campaigns, nil
}

func deserializeCampaign(scan func(dest ...any) error) (*domain.Campaign, error) {
	campaign := &domain.Campaign{}

	var metadataJSON []byte

	if err := scan(
		&campaign.ID,
		&campaign.AccountID,
		&campaign.Provider,
		&campaign.ExternalID,
		&campaign.AdAccountID,
		&campaign.Name,
		&campaign.Status,
		&metadataJSON,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &campaign.Metadata); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o metadata: %w", err)
		}
	}

	return campaign, nil
}

func (r *campaignRepository) Insert(campaign *domain.Campaign) error {
	if campaign.ID == "" {
		return errors.New("ID is required")
	}

	metadataJSON, err := serializeMetadata(campaign.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(campaignsTable).
		Columns("id", "account_id", "provider", "external_id", "ad_account_id", "name", "status", "metadata").
		Values(
			campaign.ID,
			campaign.AccountID,
			campaign.Provider,
			campaign.ExternalID,
			campaign.AdAccountID,
			campaign.Name,
			campaign.Status,
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

func (r *campaignRepository) Update(campaign *domain.Campaign) error {
	metadataJSON, err := serializeMetadata(campaign.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.
		Update(campaignsTable).
		Set("name", campaign.Name).
		Set("status", campaign.Status).
		Set("metadata", metadataJSON).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campaign.ID}).
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
		return errors.New("campaign not found")
	}

	return nil
}

// serializeMetadata converte o metadata para o JSONB persistido; mapas
// nulos viram objeto vazio para não degradar em NULL na coluna.
func serializeMetadata(metadata domain.Metadata) ([]byte, error) {
	if metadata == nil {
		metadata = domain.Metadata{}
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar o metadata: %w", err)
	}

	return metadataJSON, nil
}
