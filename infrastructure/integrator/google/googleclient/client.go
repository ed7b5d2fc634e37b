package googleclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	googledomain "github.com/vfg2006/adsync-api/infrastructure/integrator/google/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// GoogleClient implementa provider.Client sobre a API REST do Google Ads.
// As listagens usam consultas GAQL via googleAds:searchStream.
type GoogleClient struct {
	cfg        config.Google
	httpClient *http.Client
}

func NewClient(cfg config.Google) *GoogleClient {
	return &GoogleClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *GoogleClient) Provider() domain.Provider {
	return domain.ProviderGoogle
}

func (c *GoogleClient) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.Version, path)
}

// searchStream executa uma consulta GAQL no cliente informado e devolve
// as linhas de todos os lotes da resposta.
func (c *GoogleClient) searchStream(ctx context.Context, creds domain.Credentials, customerID, query string) ([]googledomain.SearchRow, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, 0, 0, fmt.Sprintf("erro ao montar a consulta: %v", err))
	}

	path := fmt.Sprintf("customers/%s/googleAds:searchStream", customerID)
	body, err := c.doRequest(ctx, http.MethodPost, c.endpoint(path), creds, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var batches []googledomain.SearchBatch
	if err := json.Unmarshal(body, &batches); err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, http.StatusOK, 0, fmt.Sprintf("erro ao decodificar JSON: %v", err))
	}

	rows := make([]googledomain.SearchRow, 0)
	for _, batch := range batches {
		for _, rawRow := range batch.Results {
			var row googledomain.SearchRow
			if err := json.Unmarshal(rawRow, &row); err != nil {
				return nil, provider.NewFatalError(domain.ProviderGoogle, http.StatusOK, 0, fmt.Sprintf("linha malformada na resposta: %v", err))
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func (c *GoogleClient) doRequest(ctx context.Context, method, rawURL string, creds domain.Credentials, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, 0, 0, fmt.Sprintf("erro ao criar a requisição: %v", err))
	}

	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("developer-token", c.cfg.DeveloperToken)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.cfg.LoginCustomerID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderGoogle, 0, "erro ao fazer a requisição", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

// handleResponse classifica a resposta na taxonomia de erros do motor de
// sync a partir do status gRPC embutido no corpo.
func (c *GoogleClient) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderGoogle, resp.StatusCode, "erro ao ler resposta", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	var errorResp googledomain.ErrorResponse
	parseErr := json.Unmarshal(body, &errorResp)

	if parseErr == nil {
		switch {
		case errorResp.IsTokenExpired():
			return nil, provider.NewAuthError(domain.ProviderGoogle, resp.StatusCode, errorResp.Error.Code, errorResp.Error.Message)
		case errorResp.IsRateLimited():
			return nil, provider.NewRateLimitError(domain.ProviderGoogle, resp.StatusCode, errorResp.Error.Code, errorResp.Error.Message, retryAfter(resp))
		case errorResp.IsTransient():
			return nil, provider.NewTransientError(domain.ProviderGoogle, resp.StatusCode, errorResp.Error.Message, nil)
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, provider.NewAuthError(domain.ProviderGoogle, resp.StatusCode, 0, string(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, provider.NewRateLimitError(domain.ProviderGoogle, resp.StatusCode, 0, string(body), retryAfter(resp))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, provider.NewTransientError(domain.ProviderGoogle, resp.StatusCode, string(body), nil)
	}

	return nil, provider.NewFatalError(domain.ProviderGoogle, resp.StatusCode, errorResp.Error.Code, string(body))
}

func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// resourceNameID extrai o ID final de um resource name do Google Ads
// (ex.: customers/123/campaigns/456 -> 456).
func resourceNameID(resourceName string) string {
	if resourceName == "" {
		return ""
	}
	parts := strings.Split(resourceName, "/")
	return parts[len(parts)-1]
}

func parseMicros(value string) float64 {
	if value == "" {
		return 0
	}
	micros, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return micros / 1e6
}

func parseCount(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseAccessibleCustomers(body []byte) ([]string, error) {
	var resp googledomain.ListAccessibleCustomersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, http.StatusOK, 0, fmt.Sprintf("erro ao decodificar JSON: %v", err))
	}
	return resp.ResourceNames, nil
}

// searchRowMap reserializa a linha para o blob cru guardado no metadata
// da entidade.
func searchRowMap(row googledomain.SearchRow) map[string]any {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil
	}
	return m
}
