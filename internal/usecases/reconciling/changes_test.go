package reconciling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func TestDetectChanges(t *testing.T) {
	tests := []struct {
		name        string
		entityType  domain.EntityType
		oldSnapshot map[string]any
		newSnapshot map[string]any
		expected    []FieldChange
	}{
		{
			name:       "Snapshots idênticos não geram mudanças",
			entityType: domain.EntityTypeAdAccount,
			oldSnapshot: map[string]any{
				"name":     "Loja A",
				"status":   "active",
				"currency": "BRL",
				"timezone": "America/Sao_Paulo",
			},
			newSnapshot: map[string]any{
				"name":     "Loja A",
				"status":   "active",
				"currency": "BRL",
				"timezone": "America/Sao_Paulo",
			},
			expected: []FieldChange{},
		},
		{
			name:       "Mudança de nome e status gera uma entrada por campo",
			entityType: domain.EntityTypeAdAccount,
			oldSnapshot: map[string]any{
				"name":   "Loja A",
				"status": "active",
			},
			newSnapshot: map[string]any{
				"name":   "Loja A - Matriz",
				"status": "paused",
			},
			expected: []FieldChange{
				{Field: "name", OldValue: strPtr("Loja A"), NewValue: strPtr("Loja A - Matriz")},
				{Field: "status", OldValue: strPtr("active"), NewValue: strPtr("paused")},
			},
		},
		{
			name:       "Caminho com ponto resolve dentro do metadata",
			entityType: domain.EntityTypeCampaign,
			oldSnapshot: map[string]any{
				"name":   "Campanha",
				"status": "active",
				"metadata": map[string]any{
					"objective":    "OUTCOME_TRAFFIC",
					"daily_budget": 50.0,
				},
			},
			newSnapshot: map[string]any{
				"name":   "Campanha",
				"status": "active",
				"metadata": map[string]any{
					"objective":    "OUTCOME_TRAFFIC",
					"daily_budget": 75.0,
				},
			},
			expected: []FieldChange{
				{Field: "metadata.daily_budget", OldValue: strPtr("50"), NewValue: strPtr("75")},
			},
		},
		{
			name:       "Campo ausente e nulo são equivalentes",
			entityType: domain.EntityTypeCampaign,
			oldSnapshot: map[string]any{
				"name":     "Campanha",
				"status":   "active",
				"metadata": map[string]any{"objective": nil},
			},
			newSnapshot: map[string]any{
				"name":     "Campanha",
				"status":   "active",
				"metadata": map[string]any{},
			},
			expected: []FieldChange{},
		},
		{
			name:       "Campo que passa a existir gera mudança com valor antigo nulo",
			entityType: domain.EntityTypeCampaign,
			oldSnapshot: map[string]any{
				"name":     "Campanha",
				"status":   "active",
				"metadata": map[string]any{},
			},
			newSnapshot: map[string]any{
				"name":     "Campanha",
				"status":   "active",
				"metadata": map[string]any{"objective": "OUTCOME_SALES"},
			},
			expected: []FieldChange{
				{Field: "metadata.objective", OldValue: nil, NewValue: strPtr("OUTCOME_SALES")},
			},
		},
		{
			name:       "Chave insights do metadata é ignorada pelo detector",
			entityType: domain.EntityTypeCampaign,
			oldSnapshot: map[string]any{
				"name":   "Campanha",
				"status": "active",
				"metadata": map[string]any{
					"objective": "OUTCOME_TRAFFIC",
					"insights":  map[string]any{"impressions": 100},
				},
			},
			newSnapshot: map[string]any{
				"name":   "Campanha",
				"status": "active",
				"metadata": map[string]any{
					"objective": "OUTCOME_TRAFFIC",
					"insights":  map[string]any{"impressions": 5000},
				},
			},
			expected: []FieldChange{},
		},
		{
			name:       "Targeting equivalente serializado de formas diferentes não gera mudança",
			entityType: domain.EntityTypeAdGroup,
			oldSnapshot: map[string]any{
				"name":   "Grupo",
				"status": "active",
				"metadata": map[string]any{
					"targeting": map[string]any{"age_min": 18, "geo": "BR"},
				},
			},
			newSnapshot: map[string]any{
				"name":   "Grupo",
				"status": "active",
				"metadata": map[string]any{
					"targeting": map[string]any{"geo": "BR", "age_min": 18},
				},
			},
			expected: []FieldChange{},
		},
		{
			name:       "Creative do anúncio comparado como JSON canônico",
			entityType: domain.EntityTypeAd,
			oldSnapshot: map[string]any{
				"name":     "Anúncio",
				"status":   "active",
				"creative": map[string]any{"title": "Promo"},
			},
			newSnapshot: map[string]any{
				"name":     "Anúncio",
				"status":   "active",
				"creative": map[string]any{"title": "Promo de Verão"},
			},
			expected: []FieldChange{
				{Field: "creative", OldValue: strPtr(`{"title":"Promo"}`), NewValue: strPtr(`{"title":"Promo de Verão"}`)},
			},
		},
		{
			name:        "Tipo de entidade desconhecido não gera mudanças",
			entityType:  domain.EntityType("invalid"),
			oldSnapshot: map[string]any{"name": "a"},
			newSnapshot: map[string]any{"name": "b"},
			expected:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := DetectChanges(tt.entityType, tt.oldSnapshot, tt.newSnapshot)
			assert.Equal(t, tt.expected, changes)
		})
	}
}

func TestLookupPath(t *testing.T) {
	snapshot := map[string]any{
		"name": "Campanha",
		"metadata": domain.Metadata{
			"objective": "OUTCOME_TRAFFIC",
		},
	}

	assert.Equal(t, "Campanha", lookupPath(snapshot, "name"))
	assert.Equal(t, "OUTCOME_TRAFFIC", lookupPath(snapshot, "metadata.objective"))
	assert.Nil(t, lookupPath(snapshot, "metadata.daily_budget"))
	assert.Nil(t, lookupPath(snapshot, "name.sub"))
	assert.Nil(t, lookupPath(nil, "name"))
}

func strPtr(s string) *string {
	return &s
}
