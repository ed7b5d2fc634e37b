package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// Limite de páginas seguidas por listagem, como proteção contra cursores
// que nunca terminam.
const maxPages = 50

// MetaClient implementa provider.Client sobre o Graph API do Meta.
type MetaClient struct {
	cfg        config.Meta
	httpClient *http.Client
}

func NewClient(cfg config.Meta) *MetaClient {
	return &MetaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *MetaClient) Provider() domain.Provider {
	return domain.ProviderMeta
}

func (c *MetaClient) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.Version, path)
}

// doGet executa uma requisição GET e classifica a resposta na taxonomia
// de erros do motor de sync.
func (c *MetaClient) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, provider.NewFatalError(domain.ProviderMeta, 0, 0, fmt.Sprintf("erro ao criar a requisição: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderMeta, 0, "erro ao fazer a requisição", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

// handleResponse manipula a resposta HTTP e classifica erros de token
// expirado, rate limit, transitórios e fatais.
func (c *MetaClient) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderMeta, resp.StatusCode, "erro ao ler resposta", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	var errorResp metadomain.ErrorResponse
	parseErr := json.Unmarshal(body, &errorResp)

	if parseErr == nil {
		switch {
		case errorResp.IsTokenExpired() || resp.StatusCode == http.StatusUnauthorized:
			return nil, provider.NewAuthError(domain.ProviderMeta, resp.StatusCode, errorResp.Error.Code, errorResp.Error.Message)
		case errorResp.IsRateLimited() || resp.StatusCode == http.StatusTooManyRequests:
			return nil, provider.NewRateLimitError(domain.ProviderMeta, resp.StatusCode, errorResp.Error.Code, errorResp.Error.Message, retryAfter(resp))
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, provider.NewAuthError(domain.ProviderMeta, resp.StatusCode, 0, string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, provider.NewRateLimitError(domain.ProviderMeta, resp.StatusCode, 0, string(body), retryAfter(resp))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, provider.NewTransientError(domain.ProviderMeta, resp.StatusCode, string(body), nil)
	}

	return nil, provider.NewFatalError(domain.ProviderMeta, resp.StatusCode, errorResp.Error.Code, string(body))
}

func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// listPages segue os cursores de paginação acumulando os itens crus de
// todas as páginas.
func (c *MetaClient) listPages(ctx context.Context, path string, params url.Values, creds domain.Credentials) ([]json.RawMessage, error) {
	params.Set("access_token", creds.AccessToken)

	nextURL := c.endpoint(path) + "?" + params.Encode()

	items := make([]json.RawMessage, 0)
	for page := 0; nextURL != "" && page < maxPages; page++ {
		body, err := c.doGet(ctx, nextURL)
		if err != nil {
			return nil, err
		}

		var response metadomain.Page
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, provider.NewFatalError(domain.ProviderMeta, http.StatusOK, 0, fmt.Sprintf("erro ao decodificar JSON: %v", err))
		}

		items = append(items, response.Data...)
		nextURL = response.Paging.Next
	}

	return items, nil
}
