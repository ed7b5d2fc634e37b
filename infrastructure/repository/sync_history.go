package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const syncHistoryTable = "sync_history"

type SyncHistoryRepository interface {
	Create(run *domain.SyncRun) error
	UpdateStatus(runID string, status domain.SyncRunStatus) error
	UpdateCounts(runID string, counts domain.SyncCounts) error
	Finalize(run *domain.SyncRun) error
	GetByID(runID string) (*domain.SyncRun, error)
	GetLastByConnection(connectionID string) (*domain.SyncRun, error)
	ListByAccount(accountID string, limit uint64) ([]*domain.SyncRun, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type syncHistoryRepository struct {
	conn *postgres.Connection
}

func NewSyncHistoryRepository(conn *postgres.Connection) SyncHistoryRepository {
	return &syncHistoryRepository{
		conn: conn,
	}
}

const syncRunColumns = "id, connection_id, account_id, provider, sync_type, status, counts, errors, error_message, started_at, completed_at, metadata"

func (r *syncHistoryRepository) Create(run *domain.SyncRun) error {
	if run.ID == "" {
		return errors.New("ID is required")
	}

	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("erro ao serializar os contadores: %w", err)
	}

	metadataJSON, err := serializeMetadata(run.Metadata)
	if err != nil {
		return err
	}

	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert(syncHistoryTable).
		Columns("id", "connection_id", "account_id", "provider", "sync_type", "status", "counts", "errors", "started_at", "metadata").
		Values(
			run.ID,
			run.ConnectionID,
			run.AccountID,
			run.Provider,
			run.SyncType,
			run.Status,
			countsJSON,
			[]byte("[]"),
			run.StartedAt,
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

func (r *syncHistoryRepository) UpdateStatus(runID string, status domain.SyncRunStatus) error {
	return r.update(runID, map[string]interface{}{"status": status})
}

// UpdateCounts persiste o progresso incremental de uma execução em
// andamento.
func (r *syncHistoryRepository) UpdateCounts(runID string, counts domain.SyncCounts) error {
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("erro ao serializar os contadores: %w", err)
	}

	return r.update(runID, map[string]interface{}{"counts": countsJSON})
}

// Finalize grava o desfecho da execução. A partir daqui o registro é
// imutável.
func (r *syncHistoryRepository) Finalize(run *domain.SyncRun) error {
	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("erro ao serializar os contadores: %w", err)
	}

	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("erro ao serializar os erros: %w", err)
	}

	return r.update(run.ID, map[string]interface{}{
		"status":        run.Status,
		"counts":        countsJSON,
		"errors":        errorsJSON,
		"error_message": run.ErrorMessage,
		"completed_at":  run.CompletedAt,
	})
}

func (r *syncHistoryRepository) update(runID string, fields map[string]interface{}) error {
	queryBuilder := squirrel.
		Update(syncHistoryTable).
		Where(squirrel.Eq{"id": runID}).
		PlaceholderFormat(squirrel.Dollar)

	for column, value := range fields {
		queryBuilder = queryBuilder.Set(column, value)
	}

	sqlQuery, args, err := queryBuilder.ToSql()
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
		return errors.New("sync run not found")
	}

	return nil
}

func (r *syncHistoryRepository) GetByID(runID string) (*domain.SyncRun, error) {
	queryBuilder := squirrel.
		Select(syncRunColumns).
		From(syncHistoryTable).
		Where(squirrel.Eq{"id": runID}).
		PlaceholderFormat(squirrel.Dollar)

	return r.getRun(queryBuilder)
}

func (r *syncHistoryRepository) GetLastByConnection(connectionID string) (*domain.SyncRun, error) {
	queryBuilder := squirrel.
		Select(syncRunColumns).
		From(syncHistoryTable).
		Where(squirrel.Eq{"connection_id": connectionID}).
		OrderBy("started_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	return r.getRun(queryBuilder)
}

func (r *syncHistoryRepository) getRun(queryBuilder squirrel.SelectBuilder) (*domain.SyncRun, error) {
	querySQL, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	run, err := deserializeSyncRun(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return run, nil
}

func (r *syncHistoryRepository) ListByAccount(accountID string, limit uint64) ([]*domain.SyncRun, error) {
	querySQL, args, err := squirrel.
		Select(syncRunColumns).
		From(syncHistoryTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("started_at DESC").
		Limit(limit).
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

	runs := make([]*domain.SyncRun, 0)

	for rows.Next() {
		run, err := deserializeSyncRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return runs, nil
}

func deserializeSyncRun(scan func(dest ...any) error) (*domain.SyncRun, error) {
	run := &domain.SyncRun{}

	var countsJSON, errorsJSON, metadataJSON []byte

	if err := scan(
		&run.ID,
		&run.ConnectionID,
		&run.AccountID,
		&run.Provider,
		&run.SyncType,
		&run.Status,
		&countsJSON,
		&errorsJSON,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.CompletedAt,
		&metadataJSON,
	); err != nil {
		return nil, err
	}

	if len(countsJSON) > 0 {
		if err := json.Unmarshal(countsJSON, &run.Counts); err != nil {
			return nil, fmt.Errorf("erro ao deserializar os contadores: %w", err)
		}
	}

	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
			return nil, fmt.Errorf("erro ao deserializar os erros: %w", err)
		}
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &run.Metadata); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o metadata: %w", err)
		}
	}

	return run, nil
}

// DeleteOlderThan remove execuções concluídas antes do corte de retenção.
func (r *syncHistoryRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	sqlQuery, args, err := squirrel.
		Delete(syncHistoryTable).
		Where(squirrel.Lt{"started_at": cutoff}).
		Where(squirrel.NotEq{"completed_at": nil}).
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
