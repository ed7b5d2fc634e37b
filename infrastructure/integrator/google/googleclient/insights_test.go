package googleclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func TestInsightQuery(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	t.Run("Consulta de campanhas filtra por id e período", func(t *testing.T) {
		query, err := insightQuery(domain.EntityTypeCampaign, []string{"111", "222"}, start, end)

		assert.NoError(t, err)
		assert.Contains(t, query, "FROM campaign")
		assert.Contains(t, query, "campaign.id IN (111, 222)")
		assert.Contains(t, query, "segments.date BETWEEN '2025-06-01' AND '2025-06-07'")
	})

	t.Run("Consulta da conta não filtra por id", func(t *testing.T) {
		query, err := insightQuery(domain.EntityTypeAdAccount, []string{"123"}, start, end)

		assert.NoError(t, err)
		assert.Contains(t, query, "FROM customer")
		assert.NotContains(t, query, "IN (")
	})

	t.Run("Consulta de anúncios usa o recurso ad_group_ad", func(t *testing.T) {
		query, err := insightQuery(domain.EntityTypeAd, []string{"333"}, start, end)

		assert.NoError(t, err)
		assert.Contains(t, query, "FROM ad_group_ad")
		assert.Contains(t, query, "ad_group_ad.ad.id IN (333)")
	})

	t.Run("Tipo de entidade não suportado retorna erro fatal", func(t *testing.T) {
		_, err := insightQuery(domain.EntityType("invalid"), nil, start, end)

		assert.Error(t, err)
	})
}

func TestResourceNameID(t *testing.T) {
	assert.Equal(t, "1234567890", resourceNameID("customers/1234567890"))
	assert.Equal(t, "999", resourceNameID("customers/123/campaigns/999"))
	assert.Equal(t, "", resourceNameID(""))
}

func TestParseMicros(t *testing.T) {
	assert.Equal(t, 12.5, parseMicros("12500000"))
	assert.Equal(t, 0.0, parseMicros(""))
	assert.Equal(t, 0.0, parseMicros("n/a"))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(42), parseCount("42"))
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("4.2"))
}
