package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// Kind classifica os erros dos provedores na taxonomia do motor de sync.
type Kind string

const (
	// KindAuth: credencial inválida/expirada. Dispara um refresh de token
	// seguido de uma única nova tentativa.
	KindAuth Kind = "auth"
	// KindRateLimit: limite de requisições. Backoff exponencial até o teto
	// de tentativas.
	KindRateLimit Kind = "rate_limit"
	// KindTransient: timeouts e 5xx. Retentado com backoff limitado.
	KindTransient Kind = "transient"
	// KindFatal: requisição malformada ou recurso inexistente. Nunca
	// retentado; registrado na lista de erros da execução.
	KindFatal Kind = "fatal"
)

// Error é o erro tipado da fronteira com os provedores.
type Error struct {
	Kind       Kind
	Provider   domain.Provider
	StatusCode int
	Code       int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: erro %s (status %d, code %d): %s", e.Provider, e.Kind, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: erro %s (status %d, code %d)", e.Provider, e.Kind, e.StatusCode, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewAuthError(p domain.Provider, statusCode, code int, message string) *Error {
	return &Error{Kind: KindAuth, Provider: p, StatusCode: statusCode, Code: code, Message: message}
}

func NewRateLimitError(p domain.Provider, statusCode, code int, message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimit, Provider: p, StatusCode: statusCode, Code: code, Message: message, RetryAfter: retryAfter}
}

func NewTransientError(p domain.Provider, statusCode int, message string, err error) *Error {
	return &Error{Kind: KindTransient, Provider: p, StatusCode: statusCode, Message: message, Err: err}
}

func NewFatalError(p domain.Provider, statusCode, code int, message string) *Error {
	return &Error{Kind: KindFatal, Provider: p, StatusCode: statusCode, Code: code, Message: message}
}

// KindOf extrai a classificação de um erro qualquer. Erros fora da
// taxonomia são tratados como transitórios (rede, DNS, contexto).
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return KindTransient
}

func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

func IsRateLimit(err error) bool {
	return KindOf(err) == KindRateLimit
}

func IsFatal(err error) bool {
	return KindOf(err) == KindFatal
}
