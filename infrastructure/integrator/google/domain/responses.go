package googledomain

import (
	"encoding/json"
)

// SearchBatch é um lote da resposta do googleAds:searchStream. O REST
// retorna um array de lotes, cada um com suas linhas de resultado.
type SearchBatch struct {
	Results   []json.RawMessage `json:"results"`
	FieldMask string            `json:"fieldMask,omitempty"`
}

// ListAccessibleCustomersResponse é a resposta de customers:listAccessibleCustomers
type ListAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// Customer como retornado por uma consulta GAQL sobre o recurso customer
type Customer struct {
	ResourceName    string `json:"resourceName"`
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	TimeZone        string `json:"timeZone"`
	Status          string `json:"status"`
}

// Campaign como retornada por uma consulta GAQL sobre o recurso campaign
type Campaign struct {
	ResourceName           string `json:"resourceName"`
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Status                 string `json:"status"`
	AdvertisingChannelType string `json:"advertisingChannelType"`
}

// CampaignBudget carrega o orçamento em micros da moeda da conta
type CampaignBudget struct {
	AmountMicros string `json:"amountMicros"`
}

// AdGroup como retornado por uma consulta GAQL sobre o recurso ad_group.
// Campaign é o resource name da campanha pai (customers/{c}/campaigns/{id}).
type AdGroup struct {
	ResourceName string `json:"resourceName"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Campaign     string `json:"campaign"`
}

// AdGroupAd como retornado por uma consulta GAQL sobre o recurso ad_group_ad
type AdGroupAd struct {
	ResourceName string `json:"resourceName"`
	Status       string `json:"status"`
	AdGroup      string `json:"adGroup"`
	Ad           Ad     `json:"ad"`
}

// Ad é o anúncio aninhado dentro de ad_group_ad
type Ad struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	FinalURLs     []string `json:"finalUrls,omitempty"`
	ResourceName  string   `json:"resourceName"`
	DisplayURL    string   `json:"displayUrl,omitempty"`
	AddedByGoogle bool     `json:"addedByGoogleAds,omitempty"`
}

// Metrics são as métricas de uma linha de consulta GAQL. Valores
// monetários vêm em micros; contadores vêm como strings de int64.
type Metrics struct {
	Impressions string  `json:"impressions"`
	Clicks      string  `json:"clicks"`
	CostMicros  string  `json:"costMicros"`
	CTR         float64 `json:"ctr"`
	AverageCPC  float64 `json:"averageCpc"`
	AverageCPM  float64 `json:"averageCpm"`
	VideoViews  string  `json:"videoViews,omitempty"`
	Engagements string  `json:"engagements,omitempty"`
}

// Segments são as dimensões de segmentação de uma linha de consulta GAQL
type Segments struct {
	Date string `json:"date"`
}

// SearchRow é uma linha genérica de searchStream; apenas os recursos
// selecionados na consulta vêm preenchidos.
type SearchRow struct {
	Customer       *Customer       `json:"customer,omitempty"`
	Campaign       *Campaign       `json:"campaign,omitempty"`
	CampaignBudget *CampaignBudget `json:"campaignBudget,omitempty"`
	AdGroup        *AdGroup        `json:"adGroup,omitempty"`
	AdGroupAd      *AdGroupAd      `json:"adGroupAd,omitempty"`
	Metrics        *Metrics        `json:"metrics,omitempty"`
	Segments       *Segments       `json:"segments,omitempty"`
}

// TokenResponse representa a resposta do endpoint OAuth do Google ao
// renovar um access token com um refresh token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope,omitempty"`
}
