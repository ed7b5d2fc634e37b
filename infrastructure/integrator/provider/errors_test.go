package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			name:     "Erro de auth",
			err:      NewAuthError(domain.ProviderMeta, 401, 190, "token expirado"),
			expected: KindAuth,
		},
		{
			name:     "Erro de rate limit",
			err:      NewRateLimitError(domain.ProviderMeta, 429, 17, "limite atingido", 30*time.Second),
			expected: KindRateLimit,
		},
		{
			name:     "Erro transitório",
			err:      NewTransientError(domain.ProviderGoogle, 503, "indisponível", nil),
			expected: KindTransient,
		},
		{
			name:     "Erro fatal",
			err:      NewFatalError(domain.ProviderMeta, 400, 100, "campo desconhecido"),
			expected: KindFatal,
		},
		{
			name:     "Erro tipado dentro de um wrap ainda é classificado",
			err:      fmt.Errorf("erro ao listar campanhas: %w", NewAuthError(domain.ProviderMeta, 401, 190, "token expirado")),
			expected: KindAuth,
		},
		{
			name:     "Erro fora da taxonomia é transitório",
			err:      errors.New("connection reset by peer"),
			expected: KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	authErr := NewAuthError(domain.ProviderMeta, 401, 190, "token expirado")
	rateErr := NewRateLimitError(domain.ProviderMeta, 429, 17, "limite atingido", 0)
	fatalErr := NewFatalError(domain.ProviderMeta, 400, 100, "campo desconhecido")

	assert.True(t, IsAuth(authErr))
	assert.False(t, IsAuth(rateErr))

	assert.True(t, IsRateLimit(rateErr))
	assert.False(t, IsRateLimit(fatalErr))

	assert.True(t, IsFatal(fatalErr))
	assert.False(t, IsFatal(authErr))
}

func TestErrorMessage(t *testing.T) {
	t.Run("Com mensagem do provedor", func(t *testing.T) {
		err := NewAuthError(domain.ProviderMeta, 401, 190, "token expirado")
		assert.Equal(t, "meta: erro auth (status 401, code 190): token expirado", err.Error())
	})

	t.Run("Sem mensagem do provedor", func(t *testing.T) {
		err := &Error{Kind: KindTransient, Provider: domain.ProviderGoogle, StatusCode: 503}
		assert.Equal(t, "google: erro transient (status 503, code 0)", err.Error())
	})

	t.Run("Unwrap preserva a causa original", func(t *testing.T) {
		cause := errors.New("dial tcp: i/o timeout")
		err := NewTransientError(domain.ProviderMeta, 0, "falha de rede", cause)
		assert.ErrorIs(t, err, cause)
	})
}
