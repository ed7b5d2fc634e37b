package domain

import (
	"strings"
	"time"
)

type EntityType string

const (
	EntityTypeAdAccount EntityType = "ad_account"
	EntityTypeCampaign  EntityType = "campaign"
	EntityTypeAdGroup   EntityType = "ad_group"
	EntityTypeAd        EntityType = "ad"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeAdAccount, EntityTypeCampaign, EntityTypeAdGroup, EntityTypeAd:
		return true
	}
	return false
}

// EntityStatus é o vocabulário compartilhado de status entre provedores.
type EntityStatus string

const (
	EntityStatusActive   EntityStatus = "active"
	EntityStatusPaused   EntityStatus = "paused"
	EntityStatusArchived EntityStatus = "archived"
	EntityStatusUnknown  EntityStatus = "unknown"
)

// NormalizeEntityStatus converte status específicos de cada provedor
// (ACTIVE, ENABLED, CAMPAIGN_PAUSED, REMOVED...) para o vocabulário comum.
func NormalizeEntityStatus(raw string) EntityStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACTIVE", "ENABLED":
		return EntityStatusActive
	case "PAUSED", "CAMPAIGN_PAUSED", "ADSET_PAUSED", "AD_PAUSED":
		return EntityStatusPaused
	case "ARCHIVED", "DELETED", "REMOVED", "DISAPPROVED":
		return EntityStatusArchived
	default:
		return EntityStatusUnknown
	}
}

// Metadata é o blob livre com o último payload sincronizado e campos derivados.
type Metadata map[string]any

// AdAccount é uma conta de anúncios do provedor vinculada a um tenant local.
// Chave natural: (account_id, provider, external_id).
type AdAccount struct {
	ID         string       `json:"id"`
	AccountID  string       `json:"account_id"`
	Provider   Provider     `json:"provider"`
	ExternalID string       `json:"external_id"`
	Name       string       `json:"name"`
	Currency   string       `json:"currency"`
	Timezone   string       `json:"timezone"`
	Status     EntityStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Campaign struct {
	ID          string       `json:"id"`
	AccountID   string       `json:"account_id"`
	Provider    Provider     `json:"provider"`
	ExternalID  string       `json:"external_id"`
	AdAccountID string       `json:"ad_account_id"`
	Name        string       `json:"name"`
	Status      EntityStatus `json:"status"`
	Metadata    Metadata     `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type AdGroup struct {
	ID         string       `json:"id"`
	AccountID  string       `json:"account_id"`
	Provider   Provider     `json:"provider"`
	ExternalID string       `json:"external_id"`
	CampaignID string       `json:"campaign_id"`
	Name       string       `json:"name"`
	Status     EntityStatus `json:"status"`
	Metadata   Metadata     `json:"metadata"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Ad struct {
	ID         string       `json:"id"`
	AccountID  string       `json:"account_id"`
	Provider   Provider     `json:"provider"`
	ExternalID string       `json:"external_id"`
	AdGroupID  string       `json:"ad_group_id"`
	Name       string       `json:"name"`
	Status     EntityStatus `json:"status"`
	Creative   Metadata     `json:"creative"`
	Metadata   Metadata     `json:"metadata"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
