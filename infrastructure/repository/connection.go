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

const connectionsTable = "connections"

type ConnectionRepository interface {
	GetByID(connectionID string) (*domain.Connection, error)
	GetByAccountAndProvider(accountID string, provider domain.Provider) (*domain.Connection, error)
	ListByStatus(status domain.ConnectionStatus) ([]*domain.Connection, error)
	ListDue(minInterval time.Duration) ([]*domain.Connection, error)
	Save(connection *domain.Connection) error
	UpdateCredentials(connectionID string, creds domain.Credentials) error
	UpdateStatus(connectionID string, status domain.ConnectionStatus) error
	UpdateLastSyncAt(connectionID string, syncedAt time.Time) error
	Delete(connectionID string) error
}

type connectionRepository struct {
	conn *postgres.Connection
}

func NewConnectionRepository(conn *postgres.Connection) ConnectionRepository {
	return &connectionRepository{
		conn: conn,
	}
}

const connectionColumns = "id, account_id, provider, status, credentials, selected_external_ids, last_sync_at, created_at, updated_at"

func (r *connectionRepository) GetByID(connectionID string) (*domain.Connection, error) {
	return r.getConnection(squirrel.Eq{"id": connectionID})
}

func (r *connectionRepository) GetByAccountAndProvider(accountID string, provider domain.Provider) (*domain.Connection, error) {
	return r.getConnection(squirrel.Eq{"account_id": accountID, "provider": provider})
}

func (r *connectionRepository) getConnection(whereClause map[string]interface{}) (*domain.Connection, error) {
	querySQL, args, err := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(querySQL, args...)

	connection, err := deserializeConnection(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return connection, nil
}

func (r *connectionRepository) ListByStatus(status domain.ConnectionStatus) ([]*domain.Connection, error) {
	queryBuilder := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(squirrel.Eq{"status": status}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.listConnections(queryBuilder)
}

// ListDue lista as conexões ativas elegíveis para sincronização: nunca
// sincronizadas ou sincronizadas há mais que o intervalo mínimo.
func (r *connectionRepository) ListDue(minInterval time.Duration) ([]*domain.Connection, error) {
	cutoff := time.Now().Add(-minInterval)

	queryBuilder := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(squirrel.Eq{"status": domain.ConnectionStatusActive}).
		Where(squirrel.Or{
			squirrel.Eq{"last_sync_at": nil},
			squirrel.Lt{"last_sync_at": cutoff},
		}).
		OrderBy("last_sync_at ASC NULLS FIRST").
		PlaceholderFormat(squirrel.Dollar)

	return r.listConnections(queryBuilder)
}

func (r *connectionRepository) listConnections(queryBuilder squirrel.SelectBuilder) ([]*domain.Connection, error) {
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

	connections := make([]*domain.Connection, 0)

	for rows.Next() {
		connection, err := deserializeConnection(rows.Scan)
		if err != nil {
			return nil, err
		}
		connections = append(connections, connection)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return connections, nil
}

func deserializeConnection(scan func(dest ...any) error) (*domain.Connection, error) {
	connection := &domain.Connection{}

	var credentialsJSON []byte
	var selectedIDs pq.StringArray

	if err := scan(
		&connection.ID,
		&connection.AccountID,
		&connection.Provider,
		&connection.Status,
		&credentialsJSON,
		&selectedIDs,
		&connection.LastSyncAt,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(credentialsJSON) > 0 {
		if err := json.Unmarshal(credentialsJSON, &connection.Credentials); err != nil {
			return nil, fmt.Errorf("erro ao deserializar as credenciais: %w", err)
		}
	}

	connection.SelectedExternalIDs = selectedIDs

	return connection, nil
}

// Save insere ou atualiza uma conexão. Só existe uma conexão por
// (account_id, provider); reconectar substitui credenciais e seleção.
func (r *connectionRepository) Save(connection *domain.Connection) error {
	if connection.ID == "" {
		return errors.New("ID is required")
	}

	credentialsJSON, err := json.Marshal(connection.Credentials)
	if err != nil {
		return fmt.Errorf("erro ao serializar as credenciais: %w", err)
	}

	query := squirrel.StatementBuilder.
		Insert(connectionsTable).
		Columns("id", "account_id", "provider", "status", "credentials", "selected_external_ids").
		Values(
			connection.ID,
			connection.AccountID,
			connection.Provider,
			connection.Status,
			credentialsJSON,
			pq.Array(connection.SelectedExternalIDs),
		).
		Suffix(`
			ON CONFLICT (account_id, provider) DO UPDATE SET
				status = EXCLUDED.status,
				credentials = EXCLUDED.credentials,
				selected_external_ids = EXCLUDED.selected_external_ids,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

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

func (r *connectionRepository) UpdateCredentials(connectionID string, creds domain.Credentials) error {
	credentialsJSON, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("erro ao serializar as credenciais: %w", err)
	}

	return r.update(connectionID, map[string]interface{}{
		"credentials": credentialsJSON,
		"status":      domain.ConnectionStatusActive,
	})
}

func (r *connectionRepository) UpdateStatus(connectionID string, status domain.ConnectionStatus) error {
	return r.update(connectionID, map[string]interface{}{"status": status})
}

func (r *connectionRepository) UpdateLastSyncAt(connectionID string, syncedAt time.Time) error {
	return r.update(connectionID, map[string]interface{}{"last_sync_at": syncedAt})
}

func (r *connectionRepository) update(connectionID string, fields map[string]interface{}) error {
	queryBuilder := squirrel.
		Update(connectionsTable).
		Where(squirrel.Eq{"id": connectionID}).
		Set("updated_at", squirrel.Expr("NOW()")).
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
		return errors.New("connection not found")
	}

	return nil
}

func (r *connectionRepository) Delete(connectionID string) error {
	sqlQuery, args, err := squirrel.
		Delete(connectionsTable).
		Where(squirrel.Eq{"id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}
