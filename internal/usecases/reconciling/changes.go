package reconciling

import (
	"strings"

	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// FieldChange é a diferença de um campo rastreado entre o snapshot
// persistido e o snapshot do provedor.
type FieldChange struct {
	Field    string
	OldValue *string
	NewValue *string
}

// trackedFields lista, por tipo de entidade, os campos que geram eventos
// de mudança. Caminhos com ponto entram no metadata. Tudo fora da lista
// (em especial metadata.insights, que muda a cada sync) é ignorado pelo
// detector.
var trackedFields = map[domain.EntityType][]string{
	domain.EntityTypeAdAccount: {"name", "status", "currency", "timezone"},
	domain.EntityTypeCampaign:  {"name", "status", "metadata.objective", "metadata.daily_budget"},
	domain.EntityTypeAdGroup:   {"name", "status", "metadata.daily_budget", "metadata.targeting"},
	domain.EntityTypeAd:        {"name", "status", "creative"},
}

// DetectChanges compara dois snapshots campo a campo e devolve apenas as
// diferenças dos campos rastreados. Função pura: não toca repositório
// nem relógio.
func DetectChanges(entityType domain.EntityType, oldSnapshot, newSnapshot map[string]any) []FieldChange {
	fields, ok := trackedFields[entityType]
	if !ok {
		return nil
	}

	changes := make([]FieldChange, 0)

	for _, field := range fields {
		oldValue := canonicalValue(lookupPath(oldSnapshot, field))
		newValue := canonicalValue(lookupPath(newSnapshot, field))

		if equalValues(oldValue, newValue) {
			continue
		}

		changes = append(changes, FieldChange{
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
		})
	}

	return changes
}

// lookupPath resolve um caminho com pontos dentro de mapas aninhados.
func lookupPath(snapshot map[string]any, path string) any {
	if snapshot == nil {
		return nil
	}

	parts := strings.Split(path, ".")
	var current any = snapshot

	for _, part := range parts {
		asMap, ok := current.(map[string]any)
		if !ok {
			if metadata, isMetadata := current.(domain.Metadata); isMetadata {
				asMap = metadata
			} else {
				return nil
			}
		}

		current, ok = asMap[part]
		if !ok {
			return nil
		}
	}

	return current
}

// canonicalValue serializa o valor em uma forma estável para comparação
// e para o log de mudanças. Strings ficam como estão; o restante vira
// JSON canônico. Ausente e nulo são equivalentes.
func canonicalValue(value any) *string {
	if value == nil {
		return nil
	}

	if s, ok := value.(string); ok {
		return &s
	}

	serialized := utils.StableJSON(value)
	if serialized == "" || serialized == "null" {
		return nil
	}

	return &serialized
}

func equalValues(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
