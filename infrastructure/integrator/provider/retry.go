package provider

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig limita as novas tentativas de chamadas aos provedores.
// O timeout é por chamada, nunca pela execução inteira, para que uma
// chamada travada falhe rápido sem segurar o lock da conexão.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// WithRetry executa fn retentando erros de rate limit e transitórios com
// backoff exponencial e jitter. Erros de auth e fatais retornam
// imediatamente; o tratamento de auth (refresh + uma retentativa) é
// responsabilidade do orquestrador.
func WithRetry(ctx context.Context, cfg RetryConfig, step string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		kind := KindOf(lastErr)
		if kind == KindAuth || kind == KindFatal {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(cfg, attempt, lastErr)

		logrus.WithFields(logrus.Fields{
			"step":    step,
			"attempt": attempt,
			"delay":   delay.String(),
			"kind":    string(kind),
			"error":   lastErr.Error(),
		}).Warn("Erro retentável na chamada ao provedor, aguardando backoff")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

func backoffDelay(cfg RetryConfig, attempt int, err error) time.Duration {
	// Respeita o Retry-After do provedor quando informado
	var pErr *Error
	if errors.As(err, &pErr) && pErr.RetryAfter > 0 {
		return pErr.RetryAfter
	}

	delay := cfg.BaseDelay << uint(attempt-1)
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	// Jitter de até 25% para evitar sincronização de retentativas
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
