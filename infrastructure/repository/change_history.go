package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const changeHistoryTable = "change_history"

type ChangeHistoryRepository interface {
	Append(events []domain.ChangeEvent) error
	ListRecent(accountID string, limit uint64) ([]domain.ChangeEvent, error)
	ListByEntity(accountID string, entityType domain.EntityType, entityID string, limit uint64) ([]domain.ChangeEvent, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type changeHistoryRepository struct {
	conn *postgres.Connection
}

func NewChangeHistoryRepository(conn *postgres.Connection) ChangeHistoryRepository {
	return &changeHistoryRepository{
		conn: conn,
	}
}

const changeEventColumns = "id, account_id, entity_type, entity_id, provider, external_id, change_type, field_name, old_value, new_value, detected_at"

// Append grava os eventos detectados em lote. O histórico é append-only:
// nenhum caminho de código atualiza ou remove eventos individuais.
func (r *changeHistoryRepository) Append(events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert(changeHistoryTable).
		Columns("account_id", "entity_type", "entity_id", "provider", "external_id", "change_type", "field_name", "old_value", "new_value", "detected_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, event := range events {
		query = query.Values(
			event.AccountID,
			event.EntityType,
			event.EntityID,
			event.Provider,
			event.ExternalID,
			event.ChangeType,
			event.FieldName,
			event.OldValue,
			event.NewValue,
			event.DetectedAt,
		)
	}

	sqlQuery, args, err := query.ToSql()
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

func (r *changeHistoryRepository) ListRecent(accountID string, limit uint64) ([]domain.ChangeEvent, error) {
	queryBuilder := squirrel.
		Select(changeEventColumns).
		From(changeHistoryTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("detected_at DESC, id DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	return r.listEvents(queryBuilder)
}

func (r *changeHistoryRepository) ListByEntity(accountID string, entityType domain.EntityType, entityID string, limit uint64) ([]domain.ChangeEvent, error) {
	queryBuilder := squirrel.
		Select(changeEventColumns).
		From(changeHistoryTable).
		Where(squirrel.Eq{
			"account_id":  accountID,
			"entity_type": entityType,
			"entity_id":   entityID,
		}).
		OrderBy("detected_at DESC, id DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	return r.listEvents(queryBuilder)
}

func (r *changeHistoryRepository) listEvents(queryBuilder squirrel.SelectBuilder) ([]domain.ChangeEvent, error) {
	querySQL, args, err := queryBuilder.ToSql()
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

	events := make([]domain.ChangeEvent, 0)

	for rows.Next() {
		var event domain.ChangeEvent
		if err := rows.Scan(
			&event.ID,
			&event.AccountID,
			&event.EntityType,
			&event.EntityID,
			&event.Provider,
			&event.ExternalID,
			&event.ChangeType,
			&event.FieldName,
			&event.OldValue,
			&event.NewValue,
			&event.DetectedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return events, nil
}

// DeleteOlderThan remove eventos anteriores ao corte de retenção.
func (r *changeHistoryRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	sqlQuery, args, err := squirrel.
		Delete(changeHistoryTable).
		Where(squirrel.Lt{"detected_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	return result.RowsAffected()
}
