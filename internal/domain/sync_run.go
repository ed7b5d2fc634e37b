package domain

import (
	"time"
)

type SyncType string

// SyncTypeBackfill é o único tipo que reescreve insights de datas
// passadas, usado para recalcular janelas de atribuição.
const (
	SyncTypeFull        SyncType = "full"
	SyncTypeIncremental SyncType = "incremental"
	SyncTypeManual      SyncType = "manual"
	SyncTypeBackfill    SyncType = "backfill"
)

type SyncRunStatus string

const (
	SyncRunStatusPending        SyncRunStatus = "pending"
	SyncRunStatusRunning        SyncRunStatus = "running"
	SyncRunStatusSuccess        SyncRunStatus = "success"
	SyncRunStatusPartialFailure SyncRunStatus = "partial_failure"
	SyncRunStatusFailed         SyncRunStatus = "failed"
)

// SyncCounts acumula os totais sincronizados por tipo de entidade.
// Persistido incrementalmente para que o progresso de uma execução longa
// seja observável sem consultar os subsistemas.
type SyncCounts struct {
	AdAccounts int `json:"ad_accounts_sync"`
	Campaigns  int `json:"campaigns_sync"`
	AdGroups   int `json:"ad_groups_sync"`
	Ads        int `json:"ads_sync"`
	Insights   int `json:"insights_sync"`
}

func (c *SyncCounts) Add(other SyncCounts) {
	c.AdAccounts += other.AdAccounts
	c.Campaigns += other.Campaigns
	c.AdGroups += other.AdGroups
	c.Ads += other.Ads
	c.Insights += other.Insights
}

// SyncError é uma falha de passo capturada durante a execução.
// Falhas de passo nunca abortam a execução inteira.
type SyncError struct {
	Step       string `json:"step"`
	ExternalID string `json:"external_id,omitempty"`
	Category   string `json:"category"`
	Message    string `json:"message"`
}

// SyncRun é o registro de uma execução orquestrada de sincronização.
// Terminal a partir do momento em que completed_at é preenchido.
type SyncRun struct {
	ID           string        `json:"id"`
	ConnectionID string        `json:"connection_id"`
	AccountID    string        `json:"account_id"`
	Provider     Provider      `json:"provider"`
	SyncType     SyncType      `json:"sync_type"`
	Status       SyncRunStatus `json:"status"`
	Counts       SyncCounts    `json:"counts"`
	Errors       []SyncError   `json:"errors,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Metadata     Metadata      `json:"metadata,omitempty"`
}

func (r *SyncRun) Terminal() bool {
	return r.CompletedAt != nil
}
