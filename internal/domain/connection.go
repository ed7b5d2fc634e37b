package domain

import (
	"time"
)

type Provider string

const (
	ProviderMeta   Provider = "meta"
	ProviderGoogle Provider = "google"
)

func (p Provider) Valid() bool {
	return p == ProviderMeta || p == ProviderGoogle
}

type ConnectionStatus string

const (
	ConnectionStatusActive       ConnectionStatus = "active"
	ConnectionStatusExpired      ConnectionStatus = "expired"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// Credentials é o formato canônico de credenciais de um provedor.
// Todos os componentes consomem apenas este tipo; a troca/renovação
// acontece exclusivamente no gerenciador de tokens.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExpiresWithin indica se o token expira dentro da janela informada.
// Tokens sem data de expiração conhecida são tratados como válidos.
func (c Credentials) ExpiresWithin(window time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(c.ExpiresAt) < window
}

// Connection representa o vínculo de uma conta (tenant) com um provedor
// de anúncios. Uma por (account_id, provider).
type Connection struct {
	ID                  string           `json:"id"`
	AccountID           string           `json:"account_id"`
	Provider            Provider         `json:"provider"`
	Status              ConnectionStatus `json:"status"`
	Credentials         Credentials      `json:"-"`
	SelectedExternalIDs []string         `json:"selected_external_ids"`
	LastSyncAt          *time.Time       `json:"last_sync_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
