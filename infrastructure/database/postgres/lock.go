package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
)

// Locker é o contrato do lock de execução por conexão. Exatamente uma
// sincronização ativa por conexão; um segundo trigger é um no-op.
type Locker interface {
	TryLock(key string) (bool, error)
	Unlock(key string) error
}

// AdvisoryLocker implementa Locker com advisory locks do PostgreSQL.
// A chave textual (connection_id) é reduzida para int64 via FNV-1a.
//
// Advisory locks são de sessão: adquirir e liberar precisam acontecer no
// mesmo backend. O pool do database/sql não garante isso, então cada
// lock adquirido fica preso a uma *sql.Conn dedicada até o Unlock.
type AdvisoryLocker struct {
	conn     *Connection
	mu       sync.Mutex
	sessions map[string]*sql.Conn
}

func NewAdvisoryLocker(conn *Connection) *AdvisoryLocker {
	return &AdvisoryLocker{
		conn:     conn,
		sessions: make(map[string]*sql.Conn),
	}
}

func (l *AdvisoryLocker) TryLock(key string) (bool, error) {
	ctx := context.Background()

	session, err := l.conn.DB.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("erro ao reservar sessão para advisory lock: %w", err)
	}

	var acquired bool
	row := session.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashKey(key))
	if err := row.Scan(&acquired); err != nil {
		session.Close()
		return false, fmt.Errorf("erro ao adquirir advisory lock: %w", err)
	}

	if !acquired {
		session.Close()
		return false, nil
	}

	l.mu.Lock()
	l.sessions[key] = session
	l.mu.Unlock()

	return true, nil
}

func (l *AdvisoryLocker) Unlock(key string) error {
	l.mu.Lock()
	session, ok := l.sessions[key]
	delete(l.sessions, key)
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("advisory lock não estava adquirido para a chave %q", key)
	}
	defer session.Close()

	var released bool
	row := session.QueryRowContext(context.Background(), "SELECT pg_advisory_unlock($1)", hashKey(key))
	if err := row.Scan(&released); err != nil {
		return fmt.Errorf("erro ao liberar advisory lock: %w", err)
	}

	if !released {
		return fmt.Errorf("advisory lock não estava adquirido para a chave %q", key)
	}

	return nil
}

func hashKey(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}
