package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("Sucesso na primeira tentativa não retenta", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Erro transitório é retentado até o teto", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			return NewTransientError(domain.ProviderMeta, 503, "indisponível", nil)
		})

		assert.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, KindTransient, KindOf(err))
	})

	t.Run("Erro transitório seguido de sucesso para de retentar", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			if calls < 3 {
				return NewTransientError(domain.ProviderMeta, 503, "indisponível", nil)
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Erro de auth retorna imediatamente", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			return NewAuthError(domain.ProviderMeta, 401, 190, "token expirado")
		})

		assert.True(t, IsAuth(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("Erro fatal retorna imediatamente", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			return NewFatalError(domain.ProviderMeta, 400, 100, "campo desconhecido")
		})

		assert.True(t, IsFatal(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("Erro fora da taxonomia é tratado como transitório", func(t *testing.T) {
		calls := 0

		err := WithRetry(ctx, testRetryConfig(), "campaigns", func() error {
			calls++
			return errors.New("connection reset by peer")
		})

		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Contexto cancelado interrompe o backoff", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)

		cfg := testRetryConfig()
		cfg.BaseDelay = time.Minute
		cfg.MaxDelay = time.Minute

		calls := 0
		err := WithRetry(cancelCtx, cfg, "campaigns", func() error {
			calls++
			cancel()
			return NewTransientError(domain.ProviderMeta, 503, "indisponível", nil)
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}

	t.Run("RetryAfter do provedor prevalece sobre o cálculo", func(t *testing.T) {
		err := NewRateLimitError(domain.ProviderMeta, 429, 17, "limite atingido", 42*time.Second)
		assert.Equal(t, 42*time.Second, backoffDelay(cfg, 1, err))
	})

	t.Run("Backoff cresce exponencialmente com jitter de até 25%", func(t *testing.T) {
		err := NewTransientError(domain.ProviderMeta, 503, "indisponível", nil)

		for attempt, base := range map[int]time.Duration{
			1: time.Second,
			2: 2 * time.Second,
			3: 4 * time.Second,
		} {
			delay := backoffDelay(cfg, attempt, err)
			assert.GreaterOrEqual(t, delay, base)
			assert.LessOrEqual(t, delay, base+base/4)
		}
	})

	t.Run("Backoff respeita o teto configurado", func(t *testing.T) {
		err := NewTransientError(domain.ProviderMeta, 503, "indisponível", nil)

		delay := backoffDelay(cfg, 10, err)
		assert.GreaterOrEqual(t, delay, cfg.MaxDelay)
		assert.LessOrEqual(t, delay, cfg.MaxDelay+cfg.MaxDelay/4)
	})
}
