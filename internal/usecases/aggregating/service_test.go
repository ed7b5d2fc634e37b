package aggregating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

var referenceNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockInsightRepository) {
	insightRepo := mocks.NewMockInsightRepository(ctrl)

	service := NewService(insightRepo)
	service.now = func() time.Time { return referenceNow }

	return service, insightRepo
}

func aggregatorConnection() *domain.Connection {
	return &domain.Connection{
		ID:        "conn-1",
		AccountID: "ACC001",
		Provider:  domain.ProviderMeta,
	}
}

func TestService_UpsertInsights(t *testing.T) {
	localIDs := map[string]string{"123": "camp-1"}

	t.Run("Insight inexistente é inserido", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, insightRepo := newTestService(ctrl)

		date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

		insightRepo.EXPECT().
			GetByEntityAndDate(domain.EntityTypeCampaign, "camp-1", date, domain.InsightWindowDay).
			Return(nil, nil)

		insightRepo.EXPECT().
			Insert(gomock.Any()).
			DoAndReturn(func(insight *domain.Insight) error {
				assert.Equal(t, "ACC001", insight.AccountID)
				assert.Equal(t, "camp-1", insight.EntityID)
				assert.Equal(t, int64(1000), insight.Impressions)
				assert.Equal(t, int64(50), insight.Clicks)
				return nil
			})

		written, skipped, syncErrors, err := service.UpsertInsights(aggregatorConnection(), domain.EntityTypeCampaign, localIDs, []provider.RawInsight{
			{EntityExternalID: "123", Date: date, Impressions: 1000, Clicks: 50, Spend: 25.0},
		}, false)

		assert.NoError(t, err)
		assert.Empty(t, syncErrors)
		assert.Equal(t, 1, written)
		assert.Equal(t, 0, skipped)
	})

	t.Run("Data passada já persistida é imutável na sincronização incremental", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, insightRepo := newTestService(ctrl)

		pastDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

		insightRepo.EXPECT().
			GetByEntityAndDate(domain.EntityTypeCampaign, "camp-1", pastDate, domain.InsightWindowDay).
			Return(&domain.Insight{ID: 10, EntityID: "camp-1", Date: pastDate}, nil)

		written, skipped, syncErrors, err := service.UpsertInsights(aggregatorConnection(), domain.EntityTypeCampaign, localIDs, []provider.RawInsight{
			{EntityExternalID: "123", Date: pastDate, Impressions: 999},
		}, false)

		assert.NoError(t, err)
		assert.Empty(t, syncErrors)
		assert.Equal(t, 0, written)
		assert.Equal(t, 1, skipped)
	})

	t.Run("Dia corrente é sempre reescrito", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, insightRepo := newTestService(ctrl)

		today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

		insightRepo.EXPECT().
			GetByEntityAndDate(domain.EntityTypeCampaign, "camp-1", today, domain.InsightWindowDay).
			Return(&domain.Insight{ID: 10, EntityID: "camp-1", Date: today, Impressions: 100}, nil)

		insightRepo.EXPECT().
			Overwrite(gomock.Any()).
			DoAndReturn(func(insight *domain.Insight) error {
				assert.Equal(t, int64(500), insight.Impressions)
				return nil
			})

		written, skipped, _, err := service.UpsertInsights(aggregatorConnection(), domain.EntityTypeCampaign, localIDs, []provider.RawInsight{
			{EntityExternalID: "123", Date: today, Impressions: 500},
		}, false)

		assert.NoError(t, err)
		assert.Equal(t, 1, written)
		assert.Equal(t, 0, skipped)
	})

	t.Run("Reprocessamento com forceOverwrite reescreve datas passadas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, insightRepo := newTestService(ctrl)

		pastDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

		insightRepo.EXPECT().
			GetByEntityAndDate(domain.EntityTypeCampaign, "camp-1", pastDate, domain.InsightWindowDay).
			Return(&domain.Insight{ID: 10, EntityID: "camp-1", Date: pastDate}, nil)

		insightRepo.EXPECT().Overwrite(gomock.Any()).Return(nil)

		written, skipped, _, err := service.UpsertInsights(aggregatorConnection(), domain.EntityTypeCampaign, localIDs, []provider.RawInsight{
			{EntityExternalID: "123", Date: pastDate, Impressions: 1200},
		}, true)

		assert.NoError(t, err)
		assert.Equal(t, 1, written)
		assert.Equal(t, 0, skipped)
	})

	t.Run("Insight de entidade desconhecida vira erro de reconciliação", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _ := newTestService(ctrl)

		written, _, syncErrors, err := service.UpsertInsights(aggregatorConnection(), domain.EntityTypeCampaign, localIDs, []provider.RawInsight{
			{EntityExternalID: "999", Date: referenceNow},
		}, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, written)
		assert.Len(t, syncErrors, 1)
		assert.Equal(t, "reconciliation", syncErrors[0].Category)
		assert.Equal(t, "999", syncErrors[0].ExternalID)
	})
}

func TestService_BuildInsight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _ := newTestService(ctrl)

	t.Run("Ações são mapeadas para as colunas de engajamento", func(t *testing.T) {
		raw := provider.RawInsight{
			EntityExternalID: "123",
			Date:             time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC),
			Impressions:      1000,
			Clicks:           50,
			Spend:            25.0,
			Actions: []provider.Action{
				{Type: "like", Value: 10},
				{Type: "post_reaction", Value: 5},
				{Type: "comment", Value: 3},
				{Type: "share", Value: 2},
				{Type: "onsite_conversion.post_save", Value: 1},
				{Type: "video_view", Value: 200},
				{Type: "landing_page_view", Value: 40},
			},
		}

		insight := service.buildInsight(aggregatorConnection(), domain.EntityTypeCampaign, "camp-1", raw)

		assert.Equal(t, int64(15), insight.Likes)
		assert.Equal(t, int64(3), insight.Comments)
		assert.Equal(t, int64(2), insight.Shares)
		assert.Equal(t, int64(1), insight.Saves)
		assert.Equal(t, int64(200), insight.VideoViews)

		// Tipo fora do mapa fica apenas no raw_actions
		assert.Equal(t, float64(40), insight.RawActions["landing_page_view"])

		// Data normalizada para meia-noite UTC
		assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), insight.Date)
	})

	t.Run("Valores fracionários de ação são arredondados, não truncados", func(t *testing.T) {
		raw := provider.RawInsight{
			EntityExternalID: "123",
			Date:             referenceNow,
			Actions: []provider.Action{
				{Type: "like", Value: 9.6},
				{Type: "comment", Value: 2.4},
				{Type: "video_view", Value: 0.5},
			},
		}

		insight := service.buildInsight(aggregatorConnection(), domain.EntityTypeCampaign, "camp-1", raw)

		assert.Equal(t, int64(10), insight.Likes)
		assert.Equal(t, int64(2), insight.Comments)
		assert.Equal(t, int64(1), insight.VideoViews)

		// O valor cru preserva a fração original
		assert.Equal(t, 9.6, insight.RawActions["like"])
	})

	t.Run("Ratios são rederivados dos contadores crus", func(t *testing.T) {
		raw := provider.RawInsight{
			EntityExternalID: "123",
			Date:             referenceNow,
			Impressions:      1000,
			Clicks:           50,
			Spend:            25.0,
			// Valores reportados divergentes não prevalecem
			CTR: 99.0,
			CPC: 9.99,
			CPM: 999.0,
		}

		insight := service.buildInsight(aggregatorConnection(), domain.EntityTypeCampaign, "camp-1", raw)

		// 50/1000*100, 25/50 e 25/1000*1000
		assert.Equal(t, 5.0, insight.CTR)
		assert.Equal(t, 0.5, insight.CPC)
		assert.Equal(t, 25.0, insight.CPM)
	})

	t.Run("Contadores zerados não derivam ratios", func(t *testing.T) {
		raw := provider.RawInsight{
			EntityExternalID: "123",
			Date:             referenceNow,
		}

		insight := service.buildInsight(aggregatorConnection(), domain.EntityTypeCampaign, "camp-1", raw)

		assert.Zero(t, insight.CTR)
		assert.Zero(t, insight.CPC)
		assert.Zero(t, insight.CPM)
	})
}

func TestDivergent(t *testing.T) {
	tests := []struct {
		name     string
		local    float64
		reported float64
		expected bool
	}{
		{"Valores próximos não divergem", 5.0, 5.1, false},
		{"Local 20x maior diverge", 20.0, 1.0, true},
		{"Local 20x menor diverge", 1.0, 20.0, true},
		{"Reportado zero não diverge", 5.0, 0, false},
		{"Local zero não diverge", 0, 5.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, divergent(tt.local, tt.reported))
		})
	}
}
