package domain

import (
	"time"
)

type ChangeType string

// Criações não geram evento: o primeiro sync de uma entidade não tem
// snapshot anterior para comparar.
const (
	ChangeTypeUpdated ChangeType = "updated"
)

// ChangeEvent é uma linha do log append-only de mudanças estruturais.
// Produzido exclusivamente pelo detector de mudanças; nunca escrito
// manualmente em outro lugar.
type ChangeEvent struct {
	ID         int64      `json:"id"`
	AccountID  string     `json:"account_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Provider   Provider   `json:"provider"`
	ExternalID string     `json:"external_id"`
	ChangeType ChangeType `json:"change_type"`
	FieldName  string     `json:"field_name"`
	OldValue   *string    `json:"old_value"`
	NewValue   *string    `json:"new_value"`
	DetectedAt time.Time  `json:"detected_at"`
}
