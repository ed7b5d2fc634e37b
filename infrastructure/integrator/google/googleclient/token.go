package googleclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	googledomain "github.com/vfg2006/adsync-api/infrastructure/integrator/google/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// ValidateConnection verifica se as credenciais conseguem listar os
// clientes acessíveis.
func (c *GoogleClient) ValidateConnection(ctx context.Context, creds domain.Credentials) (bool, error) {
	_, err := c.doRequest(ctx, http.MethodGet, c.endpoint("customers:listAccessibleCustomers"), creds, nil)
	if err != nil {
		if provider.IsAuth(err) {
			logrus.Warnf("Credenciais do Google inválidas ou expiradas: %v", err)
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// RefreshCredentials renova o access token usando o refresh token no
// endpoint OAuth do Google. O refresh token não muda; só o access token
// e a expiração são substituídos.
func (c *GoogleClient) RefreshCredentials(ctx context.Context, creds domain.Credentials) (*domain.Credentials, error) {
	if creds.RefreshToken == "" {
		return nil, provider.NewAuthError(domain.ProviderGoogle, 0, 0, "refresh token não pode ser vazio")
	}

	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("client_id", c.cfg.ClientID)
	form.Add("client_secret", c.cfg.ClientSecret)
	form.Add("refresh_token", creds.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, 0, 0, fmt.Sprintf("erro ao criar a requisição: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderGoogle, 0, "erro ao renovar o token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTransientError(domain.ProviderGoogle, resp.StatusCode, "erro ao ler resposta", err)
	}

	if resp.StatusCode != http.StatusOK {
		// invalid_grant significa refresh token revogado ou expirado
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, provider.NewAuthError(domain.ProviderGoogle, resp.StatusCode, 0, string(body))
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, provider.NewTransientError(domain.ProviderGoogle, resp.StatusCode, string(body), nil)
		}
		return nil, provider.NewFatalError(domain.ProviderGoogle, resp.StatusCode, 0, string(body))
	}

	var tokenResp googledomain.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, provider.NewFatalError(domain.ProviderGoogle, http.StatusOK, 0, fmt.Sprintf("erro ao decodificar resposta: %v", err))
	}

	if tokenResp.AccessToken == "" {
		return nil, provider.NewFatalError(domain.ProviderGoogle, http.StatusOK, 0, "token retornado pela API é vazio")
	}

	logrus.Infof("Access token do Google renovado com sucesso. Expira em %d segundos.", tokenResp.ExpiresIn)

	return &domain.Credentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}
