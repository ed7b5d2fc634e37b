package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// ValidateConnection verifica se o token é válido fazendo uma consulta
// simples ao endpoint /me
func (c *MetaClient) ValidateConnection(ctx context.Context, creds domain.Credentials) (bool, error) {
	params := url.Values{}
	params.Add("fields", "id,name")
	params.Add("access_token", creds.AccessToken)

	_, err := c.doGet(ctx, c.endpoint("me")+"?"+params.Encode())
	if err != nil {
		if provider.IsAuth(err) {
			logrus.Warnf("Token do Meta inválido ou expirado: %v", err)
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// RefreshCredentials troca o token atual por um token de longa duração
// via fb_exchange_token. O Meta não usa refresh token separado; o token
// vigente é o próprio insumo da troca.
func (c *MetaClient) RefreshCredentials(ctx context.Context, creds domain.Credentials) (*domain.Credentials, error) {
	if creds.AccessToken == "" {
		return nil, provider.NewAuthError(domain.ProviderMeta, 0, 0, "token de acesso não pode ser vazio")
	}

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.cfg.AppID)
	params.Add("client_secret", c.cfg.AppSecret)
	params.Add("fb_exchange_token", creds.AccessToken)

	body, err := c.doGet(ctx, c.endpoint("oauth/access_token")+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var tokenResp metadomain.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, provider.NewFatalError(domain.ProviderMeta, http.StatusOK, 0, fmt.Sprintf("erro ao decodificar resposta: %v", err))
	}

	if tokenResp.AccessToken == "" {
		return nil, provider.NewFatalError(domain.ProviderMeta, http.StatusOK, 0, "token retornado pela API é vazio")
	}

	expiresAt := calculateTokenExpiration(tokenResp.ExpiresIn)
	logrus.Infof("Token de longa duração obtido com sucesso. Expira em %s.", formatDuration(tokenResp.ExpiresIn))

	return &domain.Credentials{
		AccessToken: tokenResp.AccessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// calculateTokenExpiration calcula a data de expiração do token com base no tempo de expiração em segundos
func calculateTokenExpiration(expiresIn int64) time.Time {
	// Subtraímos 1 dia para renovar antes da expiração real
	buffer := int64(24 * 60 * 60)
	safeExpiresIn := expiresIn - buffer

	if safeExpiresIn < 0 {
		safeExpiresIn = expiresIn / 2 // Se for muito curto, usamos metade do tempo
	}

	return time.Now().Add(time.Duration(safeExpiresIn) * time.Second)
}

// formatDuration formata a duração em segundos para um formato legível
func formatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	days := duration / (24 * time.Hour)
	hours := (duration % (24 * time.Hour)) / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d dias, %d horas e %d minutos", days, hours, minutes)
}
