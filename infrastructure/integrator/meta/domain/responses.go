package metadomain

import (
	"encoding/json"
)

// Paging é o envelope de paginação do Graph API
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// Page é uma página genérica do Graph API. Os itens ficam como
// json.RawMessage para que um registro malformado não derrube a página.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging Paging            `json:"paging"`
}

// AdAccount como retornada por /me/adaccounts
type AdAccount struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	TimezoneName  string `json:"timezone_name"`
	AccountStatus int    `json:"account_status"`
}

// Campaign como retornada por /act_{id}/campaigns
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Objective   string `json:"objective"`
	DailyBudget string `json:"daily_budget,omitempty"` // em centavos
}

// AdSet como retornado por /act_{id}/adsets
type AdSet struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	CampaignID  string         `json:"campaign_id"`
	DailyBudget string         `json:"daily_budget,omitempty"`
	Targeting   map[string]any `json:"targeting,omitempty"`
}

// Ad como retornado por /act_{id}/ads
type Ad struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	AdSetID  string         `json:"adset_id"`
	Creative map[string]any `json:"creative,omitempty"`
}

// InsightAction é uma entrada do array "actions" de um insight
type InsightAction struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight é uma linha de /{id}/insights com time_increment=1.
// O Graph API serializa métricas numéricas como strings.
type Insight struct {
	DateStart   string          `json:"date_start"`
	DateStop    string          `json:"date_stop"`
	Impressions string          `json:"impressions"`
	Clicks      string          `json:"clicks"`
	Spend       string          `json:"spend"`
	CTR         string          `json:"ctr"`
	CPC         string          `json:"cpc"`
	CPM         string          `json:"cpm"`
	Actions     []InsightAction `json:"actions,omitempty"`
}

// TokenResponse representa a resposta da API do Meta ao trocar um token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
