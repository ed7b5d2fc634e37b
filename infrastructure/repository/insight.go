package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const insightsTable = "insights"

type InsightRepository interface {
	GetByEntityAndDate(entityType domain.EntityType, entityID string, date time.Time, window domain.InsightWindow) (*domain.Insight, error)
	ListByEntityAndRange(entityType domain.EntityType, entityID string, start, end time.Time) ([]*domain.Insight, error)
	Insert(insight *domain.Insight) error
	Overwrite(insight *domain.Insight) error
}

type insightRepository struct {
	conn *postgres.Connection
}

func NewInsightRepository(conn *postgres.Connection) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

const insightColumns = "id, account_id, provider, entity_type, entity_id, date, window, impressions, clicks, spend, ctr, cpc, cpm, likes, comments, shares, saves, video_views, raw_actions, created_at, updated_at"

func (r *insightRepository) GetByEntityAndDate(entityType domain.EntityType, entityID string, date time.Time, window domain.InsightWindow) (*domain.Insight, error) {
	querySQL, args, err := squirrel.
		Select(insightColumns).
		From(insightsTable).
		Where(squirrel.Eq{
			"entity_type": entityType,
			"entity_id":   entityID,
			"date":        date.Format(time.DateOnly),
			"window":      window,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	insight, err := deserializeInsight(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return insight, nil
}

func (r *insightRepository) ListByEntityAndRange(entityType domain.EntityType, entityID string, start, end time.Time) ([]*domain.Insight, error) {
	querySQL, args, err := squirrel.
		Select(insightColumns).
		From(insightsTable).
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		Where(squirrel.GtOrEq{"date": start.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"date": end.Format(time.DateOnly)}).
		OrderBy("date ASC").
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

	insights := make([]*domain.Insight, 0)

	for rows.Next() {
		insight, err := deserializeInsight(rows.Scan)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return insights, nil
}

func deserializeInsight(scan func(dest ...any) error) (*domain.Insight, error) {
	insight := &domain.Insight{}

	var rawActionsJSON []byte

	if err := scan(
		&insight.ID,
		&insight.AccountID,
		&insight.Provider,
		&insight.EntityType,
		&insight.EntityID,
		&insight.Date,
		&insight.Window,
		&insight.Impressions,
		&insight.Clicks,
		&insight.Spend,
		&insight.CTR,
		&insight.CPC,
		&insight.CPM,
		&insight.Likes,
		&insight.Comments,
		&insight.Shares,
		&insight.Saves,
		&insight.VideoViews,
		&rawActionsJSON,
		&insight.CreatedAt,
		&insight.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(rawActionsJSON) > 0 {
		if err := json.Unmarshal(rawActionsJSON, &insight.RawActions); err != nil {
			return nil, fmt.Errorf("erro ao deserializar raw_actions: %w", err)
		}
	}

	return insight, nil
}

func (r *insightRepository) Insert(insight *domain.Insight) error {
	rawActionsJSON, err := serializeMetadata(insight.RawActions)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(insightsTable).
		Columns("account_id", "provider", "entity_type", "entity_id", "date", "window",
			"impressions", "clicks", "spend", "ctr", "cpc", "cpm",
			"likes", "comments", "shares", "saves", "video_views", "raw_actions").
		Values(
			insight.AccountID,
			insight.Provider,
			insight.EntityType,
			insight.EntityID,
			insight.Date.Format(time.DateOnly),
			insight.Window,
			insight.Impressions,
			insight.Clicks,
			insight.Spend,
			insight.CTR,
			insight.CPC,
			insight.CPM,
			insight.Likes,
			insight.Comments,
			insight.Shares,
			insight.Saves,
			insight.VideoViews,
			rawActionsJSON,
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

// Overwrite substitui a linha pela chave natural. A imutabilidade de
// datas passadas é decidida pelo agregador; aqui só executa a escrita.
func (r *insightRepository) Overwrite(insight *domain.Insight) error {
	rawActionsJSON, err := serializeMetadata(insight.RawActions)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.
		Update(insightsTable).
		Set("impressions", insight.Impressions).
		Set("clicks", insight.Clicks).
		Set("spend", insight.Spend).
		Set("ctr", insight.CTR).
		Set("cpc", insight.CPC).
		Set("cpm", insight.CPM).
		Set("likes", insight.Likes).
		Set("comments", insight.Comments).
		Set("shares", insight.Shares).
		Set("saves", insight.Saves).
		Set("video_views", insight.VideoViews).
		Set("raw_actions", rawActionsJSON).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"entity_type": insight.EntityType,
			"entity_id":   insight.EntityID,
			"date":        insight.Date.Format(time.DateOnly),
			"window":      insight.Window,
		}).
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
