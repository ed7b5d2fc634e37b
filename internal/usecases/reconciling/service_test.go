package reconciling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockAdAccountRepository, *mocks.MockCampaignRepository, *mocks.MockAdGroupRepository, *mocks.MockAdRepository, *mocks.MockChangeHistoryRepository) {
	adAccountRepo := mocks.NewMockAdAccountRepository(ctrl)
	campaignRepo := mocks.NewMockCampaignRepository(ctrl)
	adGroupRepo := mocks.NewMockAdGroupRepository(ctrl)
	adRepo := mocks.NewMockAdRepository(ctrl)
	changeHistoryRepo := mocks.NewMockChangeHistoryRepository(ctrl)

	service := NewService(adAccountRepo, campaignRepo, adGroupRepo, adRepo, changeHistoryRepo)
	service.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	return service, adAccountRepo, campaignRepo, adGroupRepo, adRepo, changeHistoryRepo
}

func testConnection() *domain.Connection {
	return &domain.Connection{
		ID:        "conn-1",
		AccountID: "ACC001",
		Provider:  domain.ProviderMeta,
		Status:    domain.ConnectionStatusActive,
	}
}

func TestService_ReconcileAdAccounts(t *testing.T) {
	t.Run("Conta nova é criada sem gerar evento de mudança", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, adAccountRepo, _, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adAccountRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdAccount{}, nil)

		adAccountRepo.EXPECT().
			Insert(gomock.Any()).
			DoAndReturn(func(adAccount *domain.AdAccount) error {
				assert.Equal(t, "ACC001", adAccount.AccountID)
				assert.Equal(t, "act_123", adAccount.ExternalID)
				assert.Equal(t, domain.EntityStatusActive, adAccount.Status)
				assert.NotEmpty(t, adAccount.ID)
				return nil
			})

		// O primeiro sync não tem snapshot anterior: nenhuma linha de histórico
		changeHistoryRepo.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(events []domain.ChangeEvent) error {
				assert.Empty(t, events)
				return nil
			})

		outcome, localIDs, err := service.ReconcileAdAccounts(connection, []provider.RemoteAdAccount{
			{ExternalID: "act_123", Name: "Loja A", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: domain.EntityStatusActive},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Created)
		assert.Equal(t, 0, outcome.Updated)
		assert.NotEmpty(t, localIDs["act_123"])
	})

	t.Run("Conta existente com nome alterado é atualizada e gera evento por campo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, adAccountRepo, _, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adAccountRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdAccount{
				{ID: "loc-1", AccountID: "ACC001", Provider: domain.ProviderMeta, ExternalID: "act_123", Name: "Loja A", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: domain.EntityStatusActive},
			}, nil)

		adAccountRepo.EXPECT().
			Update(gomock.Any()).
			DoAndReturn(func(adAccount *domain.AdAccount) error {
				assert.Equal(t, "loc-1", adAccount.ID)
				assert.Equal(t, "Loja A - Matriz", adAccount.Name)
				return nil
			})

		changeHistoryRepo.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(events []domain.ChangeEvent) error {
				assert.Len(t, events, 1)
				assert.Equal(t, domain.ChangeTypeUpdated, events[0].ChangeType)
				assert.Equal(t, "name", events[0].FieldName)
				assert.Equal(t, "Loja A", *events[0].OldValue)
				assert.Equal(t, "Loja A - Matriz", *events[0].NewValue)
				return nil
			})

		outcome, localIDs, err := service.ReconcileAdAccounts(connection, []provider.RemoteAdAccount{
			{ExternalID: "act_123", Name: "Loja A - Matriz", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: domain.EntityStatusActive},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Updated)
		assert.Equal(t, "loc-1", localIDs["act_123"])
	})

	t.Run("Conta sem mudanças não é reescrita", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, adAccountRepo, _, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adAccountRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdAccount{
				{ID: "loc-1", ExternalID: "act_123", Name: "Loja A", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: domain.EntityStatusActive},
			}, nil)

		changeHistoryRepo.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(events []domain.ChangeEvent) error {
				assert.Empty(t, events)
				return nil
			})

		outcome, _, err := service.ReconcileAdAccounts(connection, []provider.RemoteAdAccount{
			{ExternalID: "act_123", Name: "Loja A", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: domain.EntityStatusActive},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Unchanged)
		assert.Equal(t, 0, outcome.Created)
		assert.Equal(t, 0, outcome.Updated)
	})

	t.Run("Conta ausente no provedor permanece intocada localmente", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, adAccountRepo, _, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adAccountRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdAccount{
				{ID: "loc-1", ExternalID: "act_123", Name: "Loja A", Status: domain.EntityStatusActive},
			}, nil)

		changeHistoryRepo.EXPECT().Append(gomock.Any()).Return(nil)

		outcome, localIDs, err := service.ReconcileAdAccounts(connection, []provider.RemoteAdAccount{})

		assert.NoError(t, err)
		assert.Equal(t, 0, outcome.Created+outcome.Updated+outcome.Unchanged)
		// O mapa de IDs continua contendo a entidade local
		assert.Equal(t, "loc-1", localIDs["act_123"])
	})
}

func TestService_ReconcileCampaigns(t *testing.T) {
	t.Run("Mudança de orçamento diário gera evento de metadata", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, campaignRepo, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		campaignRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.Campaign{
				{
					ID:          "camp-1",
					ExternalID:  "123",
					AdAccountID: "loc-1",
					Name:        "Campanha",
					Status:      domain.EntityStatusActive,
					Metadata:    domain.Metadata{"objective": "OUTCOME_TRAFFIC", "daily_budget": 50.0},
				},
			}, nil)

		campaignRepo.EXPECT().
			Update(gomock.Any()).
			DoAndReturn(func(campaign *domain.Campaign) error {
				assert.Equal(t, 75.0, campaign.Metadata["daily_budget"])
				return nil
			})

		changeHistoryRepo.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(events []domain.ChangeEvent) error {
				assert.Len(t, events, 1)
				assert.Equal(t, "metadata.daily_budget", events[0].FieldName)
				return nil
			})

		budget := 75.0
		outcome, _, err := service.ReconcileCampaigns(connection, "loc-1", []provider.RemoteCampaign{
			{ExternalID: "123", Name: "Campanha", Status: domain.EntityStatusActive, Objective: "OUTCOME_TRAFFIC", DailyBudget: &budget},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Updated)
	})

	t.Run("Resumo de insights do metadata é preservado na atualização", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, campaignRepo, _, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		insightsSummary := map[string]any{"impressions": 1000}

		campaignRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.Campaign{
				{
					ID:         "camp-1",
					ExternalID: "123",
					Name:       "Campanha",
					Status:     domain.EntityStatusActive,
					Metadata:   domain.Metadata{"objective": "OUTCOME_TRAFFIC", "insights": insightsSummary},
				},
			}, nil)

		campaignRepo.EXPECT().
			Update(gomock.Any()).
			DoAndReturn(func(campaign *domain.Campaign) error {
				assert.Equal(t, insightsSummary, campaign.Metadata["insights"])
				assert.Equal(t, "OUTCOME_SALES", campaign.Metadata["objective"])
				return nil
			})

		changeHistoryRepo.EXPECT().Append(gomock.Any()).Return(nil)

		outcome, _, err := service.ReconcileCampaigns(connection, "loc-1", []provider.RemoteCampaign{
			{ExternalID: "123", Name: "Campanha", Status: domain.EntityStatusActive, Objective: "OUTCOME_SALES"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Updated)
	})
}

func TestService_ReconcileAdGroups(t *testing.T) {
	t.Run("Grupo com campanha pai desconhecida é rejeitado e não gravado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, _, adGroupRepo, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adGroupRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdGroup{}, nil)

		changeHistoryRepo.EXPECT().Append(gomock.Any()).Return(nil)

		outcome, localIDs, err := service.ReconcileAdGroups(connection, map[string]string{"camp-ext-1": "camp-1"}, []provider.RemoteAdGroup{
			{ExternalID: "ag-1", CampaignExternalID: "camp-ext-desconhecida", Name: "Grupo"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, outcome.Created)
		assert.Len(t, outcome.Rejected, 1)
		assert.Equal(t, "reconciliation", outcome.Rejected[0].Category)
		assert.Equal(t, "ag-1", outcome.Rejected[0].ExternalID)
		assert.Empty(t, localIDs)
	})

	t.Run("Grupo com pai conhecido é criado com o vínculo local", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, _, adGroupRepo, _, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adGroupRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.AdGroup{}, nil)

		adGroupRepo.EXPECT().
			Insert(gomock.Any()).
			DoAndReturn(func(adGroup *domain.AdGroup) error {
				assert.Equal(t, "camp-1", adGroup.CampaignID)
				return nil
			})

		changeHistoryRepo.EXPECT().Append(gomock.Any()).Return(nil)

		outcome, localIDs, err := service.ReconcileAdGroups(connection, map[string]string{"camp-ext-1": "camp-1"}, []provider.RemoteAdGroup{
			{ExternalID: "ag-1", CampaignExternalID: "camp-ext-1", Name: "Grupo", Status: domain.EntityStatusActive},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Created)
		assert.NotEmpty(t, localIDs["ag-1"])
	})
}

func TestService_ReconcileAds(t *testing.T) {
	t.Run("Anúncio com grupo pai desconhecido é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, _, _, adRepo, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.Ad{}, nil)

		changeHistoryRepo.EXPECT().Append(gomock.Any()).Return(nil)

		outcome, _, err := service.ReconcileAds(connection, map[string]string{}, []provider.RemoteAd{
			{ExternalID: "ad-1", AdGroupExternalID: "ag-desconhecido", Name: "Anúncio"},
		})

		assert.NoError(t, err)
		assert.Len(t, outcome.Rejected, 1)
		assert.Equal(t, "reconciliation", outcome.Rejected[0].Category)
	})

	t.Run("Mudança de creative é detectada e atualizada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, _, _, adRepo, changeHistoryRepo := newTestService(ctrl)
		connection := testConnection()

		adRepo.EXPECT().
			ListByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return([]*domain.Ad{
				{ID: "ad-loc-1", ExternalID: "ad-1", AdGroupID: "ag-1", Name: "Anúncio", Status: domain.EntityStatusActive, Creative: domain.Metadata{"title": "Promo"}},
			}, nil)

		adRepo.EXPECT().
			Update(gomock.Any()).
			DoAndReturn(func(ad *domain.Ad) error {
				assert.Equal(t, "Promo de Verão", ad.Creative["title"])
				return nil
			})

		changeHistoryRepo.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(events []domain.ChangeEvent) error {
				assert.Len(t, events, 1)
				assert.Equal(t, "creative", events[0].FieldName)
				return nil
			})

		outcome, _, err := service.ReconcileAds(connection, map[string]string{"ag-ext-1": "ag-1"}, []provider.RemoteAd{
			{ExternalID: "ad-1", AdGroupExternalID: "ag-ext-1", Name: "Anúncio", Status: domain.EntityStatusActive, Creative: map[string]any{"title": "Promo de Verão"}},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Updated)
	})
}
