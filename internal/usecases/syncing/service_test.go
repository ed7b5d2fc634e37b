package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres/mocks"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	providermocks "github.com/vfg2006/adsync-api/infrastructure/integrator/provider/mocks"
	repomocks "github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	aggregatingmocks "github.com/vfg2006/adsync-api/internal/usecases/aggregating/mocks"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	reconcilingmocks "github.com/vfg2006/adsync-api/internal/usecases/reconciling/mocks"
	tokeningmocks "github.com/vfg2006/adsync-api/internal/usecases/tokening/mocks"
	"go.uber.org/mock/gomock"
)

type testDeps struct {
	client          *providermocks.MockClient
	tokenManager    *tokeningmocks.MockTokenManager
	reconciler      *reconcilingmocks.MockReconciler
	aggregator      *aggregatingmocks.MockAggregator
	connectionRepo  *repomocks.MockConnectionRepository
	syncHistoryRepo *repomocks.MockSyncHistoryRepository
	locker          *mocks.MockLocker
}

func newTestService(ctrl *gomock.Controller) (*Service, *testDeps) {
	deps := &testDeps{
		client:          providermocks.NewMockClient(ctrl),
		tokenManager:    tokeningmocks.NewMockTokenManager(ctrl),
		reconciler:      reconcilingmocks.NewMockReconciler(ctrl),
		aggregator:      aggregatingmocks.NewMockAggregator(ctrl),
		connectionRepo:  repomocks.NewMockConnectionRepository(ctrl),
		syncHistoryRepo: repomocks.NewMockSyncHistoryRepository(ctrl),
		locker:          mocks.NewMockLocker(ctrl),
	}
	deps.client.EXPECT().Provider().Return(domain.ProviderMeta).AnyTimes()

	service := &Service{
		cfg: config.ProviderSync{
			IncrementalLookbackDays: 7,
			FullLookbackDays:        90,
		},
		registry:        provider.NewRegistry(deps.client),
		tokenManager:    deps.tokenManager,
		reconciler:      deps.reconciler,
		aggregator:      deps.aggregator,
		connectionRepo:  deps.connectionRepo,
		syncHistoryRepo: deps.syncHistoryRepo,
		locker:          deps.locker,
		// Backoff mínimo para não atrasar a suíte
		retryCfg: provider.RetryConfig{
			MaxAttempts: 1,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
		},
	}

	return service, deps
}

func syncConnection() *domain.Connection {
	return &domain.Connection{
		ID:        "conn-1",
		AccountID: "ACC001",
		Provider:  domain.ProviderMeta,
		Status:    domain.ConnectionStatusActive,
		Credentials: domain.Credentials{
			AccessToken: "token-atual",
			ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
		},
	}
}

// expectRunBookkeeping cobre o registro da execução, comum a quase todos
// os cenários.
func expectRunBookkeeping(deps *testDeps) {
	deps.locker.EXPECT().TryLock("conn-1").Return(true, nil)
	deps.locker.EXPECT().Unlock("conn-1").Return(nil)
	deps.syncHistoryRepo.EXPECT().Create(gomock.Any()).Return(nil)
	deps.syncHistoryRepo.EXPECT().UpdateStatus(gomock.Any(), domain.SyncRunStatusRunning).Return(nil)
	deps.syncHistoryRepo.EXPECT().UpdateCounts(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

// expectEmptyLowerLevels cobre campanhas, grupos e anúncios vazios de uma
// conta, deixando só o nível de conta com entidades locais.
func expectEmptyLowerLevels(ctx context.Context, deps *testDeps, connection *domain.Connection, accountExternalID string) {
	deps.client.EXPECT().
		ListCampaigns(ctx, connection.Credentials, accountExternalID).
		Return(nil, nil, nil)
	deps.reconciler.EXPECT().
		ReconcileCampaigns(connection, gomock.Any(), nil).
		Return(reconciling.Outcome{}, map[string]string{}, nil)

	deps.client.EXPECT().
		ListAdGroups(ctx, connection.Credentials, accountExternalID).
		Return(nil, nil, nil)
	deps.reconciler.EXPECT().
		ReconcileAdGroups(connection, map[string]string{}, nil).
		Return(reconciling.Outcome{}, map[string]string{}, nil)

	deps.client.EXPECT().
		ListAds(ctx, connection.Credentials, accountExternalID).
		Return(nil, nil, nil)
	deps.reconciler.EXPECT().
		ReconcileAds(connection, map[string]string{}, nil).
		Return(reconciling.Outcome{}, map[string]string{}, nil)
}

func TestService_RunSync(t *testing.T) {
	ctx := context.Background()

	t.Run("Lock já tomado não cria execução", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)

		deps.locker.EXPECT().TryLock("conn-1").Return(false, nil)

		run, err := service.RunSync(ctx, syncConnection(), domain.SyncTypeIncremental)

		assert.ErrorIs(t, err, ErrAlreadyRunning)
		assert.Nil(t, run)
	})

	t.Run("Execução sem erros finaliza como success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		remoteAccounts := []provider.RemoteAdAccount{{ExternalID: "act_123", Name: "Loja A"}}
		deps.client.EXPECT().
			ListAdAccounts(ctx, connection.Credentials).
			Return(remoteAccounts, nil, nil)

		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, remoteAccounts).
			Return(reconciling.Outcome{Created: 1}, map[string]string{"act_123": "acc-local-1"}, nil)

		deps.client.EXPECT().
			ListCampaigns(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileCampaigns(connection, "acc-local-1", nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			ListAdGroups(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdGroups(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			ListAds(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAds(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		// Só o nível de conta tem entidades locais, logo só ele busca insights
		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, []string{"act_123"}, gomock.Any(), gomock.Any()).
			Return(nil, nil, nil)
		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, map[string]string{"act_123": "acc-local-1"}, nil, false).
			Return(0, 0, nil, nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
				assert.Equal(t, 1, run.Counts.AdAccounts)
				assert.Empty(t, run.Errors)
				assert.NotNil(t, run.CompletedAt)
				return nil
			})

		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
	})

	t.Run("Credenciais irrecuperáveis finalizam como failed sem tocar last_sync_at", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(domain.Credentials{}, provider.NewAuthError(domain.ProviderMeta, 401, 190, "token revogado"))

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusFailed, run.Status)
				assert.Len(t, run.Errors, 1)
				assert.Equal(t, "credentials", run.Errors[0].Step)
				assert.Equal(t, "auth", run.Errors[0].Category)
				if assert.NotNil(t, run.ErrorMessage) {
					assert.Contains(t, *run.ErrorMessage, "token revogado")
				}
				return nil
			})

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusFailed, run.Status)
	})

	t.Run("Falha em um passo não impede os demais e finaliza como partial_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		remoteAccounts := []provider.RemoteAdAccount{{ExternalID: "act_123"}}
		deps.client.EXPECT().
			ListAdAccounts(ctx, connection.Credentials).
			Return(remoteAccounts, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, remoteAccounts).
			Return(reconciling.Outcome{Created: 1}, map[string]string{"act_123": "acc-local-1"}, nil)

		// Campanhas falham de forma fatal; o restante da árvore segue
		deps.client.EXPECT().
			ListCampaigns(ctx, connection.Credentials, "act_123").
			Return(nil, nil, provider.NewFatalError(domain.ProviderMeta, 400, 100, "campo desconhecido"))

		deps.client.EXPECT().
			ListAdGroups(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdGroups(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			ListAds(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAds(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, nil)
		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, gomock.Any(), nil, false).
			Return(0, 0, nil, nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusPartialFailure, run.Status)
				assert.Len(t, run.Errors, 1)
				assert.Equal(t, "campaigns", run.Errors[0].Step)
				assert.Equal(t, "fatal", run.Errors[0].Category)
				assert.Nil(t, run.ErrorMessage)
				return nil
			})

		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusPartialFailure, run.Status)
	})

	t.Run("Rate limit transitório é superado pelo retry sem registrar falha", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		service.retryCfg = provider.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
		}
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		remoteAccounts := []provider.RemoteAdAccount{{ExternalID: "act_123"}}
		deps.client.EXPECT().
			ListAdAccounts(ctx, connection.Credentials).
			Return(remoteAccounts, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, remoteAccounts).
			Return(reconciling.Outcome{Created: 1}, map[string]string{"act_123": "acc-local-1"}, nil)

		expectEmptyLowerLevels(ctx, deps, connection, "act_123")

		rateLimitErr := provider.NewRateLimitError(domain.ProviderMeta, 429, 17, "limite atingido", time.Millisecond)

		// Duas chamadas caem no rate limit, a terceira passa
		gomock.InOrder(
			deps.client.EXPECT().
				FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil, rateLimitErr).
				Times(2),
			deps.client.EXPECT().
				FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]provider.RawInsight{{EntityExternalID: "act_123"}}, nil, nil),
		)

		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, gomock.Any(), []provider.RawInsight{{EntityExternalID: "act_123"}}, false).
			Return(1, 0, nil, nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
				assert.Empty(t, run.Errors)
				assert.Equal(t, 1, run.Counts.Insights)
				return nil
			})

		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
	})

	t.Run("Falha fatal em uma conta não contamina as demais", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		remoteAccounts := []provider.RemoteAdAccount{
			{ExternalID: "act_1"},
			{ExternalID: "act_2"},
			{ExternalID: "act_3"},
		}
		accountIDs := map[string]string{"act_1": "loc-1", "act_2": "loc-2", "act_3": "loc-3"}

		deps.client.EXPECT().
			ListAdAccounts(ctx, connection.Credentials).
			Return(remoteAccounts, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, remoteAccounts).
			Return(reconciling.Outcome{Created: 3}, accountIDs, nil)

		for _, externalID := range []string{"act_1", "act_2", "act_3"} {
			expectEmptyLowerLevels(ctx, deps, connection, externalID)
		}

		// A segunda conta falha de forma fatal ao buscar insights
		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_1", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]provider.RawInsight{{EntityExternalID: "act_1"}}, nil, nil)
		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_2", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, provider.NewFatalError(domain.ProviderMeta, 400, 100, "conta suspensa"))
		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_3", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]provider.RawInsight{{EntityExternalID: "act_3"}}, nil, nil)

		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, map[string]string{"act_1": "loc-1"}, gomock.Any(), false).
			Return(1, 0, nil, nil)
		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, map[string]string{"act_3": "loc-3"}, gomock.Any(), false).
			Return(1, 0, nil, nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusPartialFailure, run.Status)
				assert.Equal(t, 3, run.Counts.AdAccounts)
				// Só as contas 1 e 3 materializaram insights
				assert.Equal(t, 2, run.Counts.Insights)
				if assert.Len(t, run.Errors, 1) {
					assert.Equal(t, "insights_ad_account", run.Errors[0].Step)
					assert.Equal(t, "act_2", run.Errors[0].ExternalID)
					assert.Equal(t, "fatal", run.Errors[0].Category)
				}
				return nil
			})

		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusPartialFailure, run.Status)
	})

	t.Run("Token rejeitado no meio da execução é renovado uma vez e a chamada repetida", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		newCreds := domain.Credentials{
			AccessToken: "token-novo",
			ExpiresAt:   time.Now().Add(60 * 24 * time.Hour),
		}

		// Primeira chamada cai em auth, a segunda (pós-refresh) passa
		gomock.InOrder(
			deps.client.EXPECT().
				ListAdAccounts(ctx, connection.Credentials).
				Return(nil, nil, provider.NewAuthError(domain.ProviderMeta, 401, 190, "token expirado")),
			deps.tokenManager.EXPECT().
				ForceRefresh(ctx, connection).
				Return(newCreds, nil),
			deps.client.EXPECT().
				ListAdAccounts(ctx, newCreds).
				Return([]provider.RemoteAdAccount{}, nil, nil),
		)

		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, []provider.RemoteAdAccount{}).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
				return nil
			})

		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusSuccess, run.Status)
	})

	t.Run("Auth persistente após o refresh marca a conexão como expirada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		authErr := provider.NewAuthError(domain.ProviderMeta, 401, 190, "token revogado")

		deps.client.EXPECT().
			ListAdAccounts(ctx, gomock.Any()).
			Return(nil, nil, authErr).
			Times(2)
		deps.tokenManager.EXPECT().
			ForceRefresh(ctx, connection).
			Return(connection.Credentials, nil)
		deps.connectionRepo.EXPECT().
			UpdateStatus("conn-1", domain.ConnectionStatusExpired).
			Return(nil)

		deps.syncHistoryRepo.EXPECT().
			Finalize(gomock.Any()).
			DoAndReturn(func(run *domain.SyncRun) error {
				assert.Equal(t, domain.SyncRunStatusFailed, run.Status)
				assert.Equal(t, "ad_accounts", run.Errors[0].Step)
				assert.Equal(t, "auth", run.Errors[0].Category)
				return nil
			})

		run, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
		assert.Equal(t, domain.SyncRunStatusFailed, run.Status)
	})

	t.Run("Contas fora da seleção da conexão são ignoradas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, deps := newTestService(ctrl)
		connection := syncConnection()
		connection.SelectedExternalIDs = []string{"act_123"}

		expectRunBookkeeping(deps)

		deps.tokenManager.EXPECT().
			EnsureValidToken(ctx, connection).
			Return(connection.Credentials, nil)

		deps.client.EXPECT().
			ListAdAccounts(ctx, connection.Credentials).
			Return([]provider.RemoteAdAccount{
				{ExternalID: "act_123"},
				{ExternalID: "act_999"},
			}, nil, nil)

		// Só a conta selecionada chega à reconciliação
		deps.reconciler.EXPECT().
			ReconcileAdAccounts(connection, []provider.RemoteAdAccount{{ExternalID: "act_123"}}).
			Return(reconciling.Outcome{Created: 1}, map[string]string{"act_123": "acc-local-1"}, nil)

		deps.client.EXPECT().
			ListCampaigns(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileCampaigns(connection, "acc-local-1", nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			ListAdGroups(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAdGroups(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			ListAds(ctx, connection.Credentials, "act_123").
			Return(nil, nil, nil)
		deps.reconciler.EXPECT().
			ReconcileAds(connection, map[string]string{}, nil).
			Return(reconciling.Outcome{}, map[string]string{}, nil)

		deps.client.EXPECT().
			FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, nil)
		deps.aggregator.EXPECT().
			UpsertInsights(connection, domain.EntityTypeAdAccount, gomock.Any(), nil, false).
			Return(0, 0, nil, nil)

		deps.syncHistoryRepo.EXPECT().Finalize(gomock.Any()).Return(nil)
		deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

		_, err := service.RunSync(ctx, connection, domain.SyncTypeIncremental)

		assert.NoError(t, err)
	})
}

func TestService_RunSync_OverwriteDatasPassadas(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		syncType       domain.SyncType
		forceOverwrite bool
	}{
		{"Sync incremental não reescreve datas passadas", domain.SyncTypeIncremental, false},
		{"Sync completo não reescreve datas passadas", domain.SyncTypeFull, false},
		{"Sync manual não reescreve datas passadas", domain.SyncTypeManual, false},
		{"Backfill é o único tipo que reescreve datas passadas", domain.SyncTypeBackfill, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, deps := newTestService(ctrl)
			connection := syncConnection()

			expectRunBookkeeping(deps)

			deps.tokenManager.EXPECT().
				EnsureValidToken(ctx, connection).
				Return(connection.Credentials, nil)

			remoteAccounts := []provider.RemoteAdAccount{{ExternalID: "act_123"}}
			deps.client.EXPECT().
				ListAdAccounts(ctx, connection.Credentials).
				Return(remoteAccounts, nil, nil)
			deps.reconciler.EXPECT().
				ReconcileAdAccounts(connection, remoteAccounts).
				Return(reconciling.Outcome{Created: 1}, map[string]string{"act_123": "acc-local-1"}, nil)

			expectEmptyLowerLevels(ctx, deps, connection, "act_123")

			deps.client.EXPECT().
				FetchInsights(ctx, connection.Credentials, "act_123", domain.EntityTypeAdAccount, gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil, nil)
			deps.aggregator.EXPECT().
				UpsertInsights(connection, domain.EntityTypeAdAccount, gomock.Any(), nil, tt.forceOverwrite).
				Return(0, 0, nil, nil)

			deps.syncHistoryRepo.EXPECT().Finalize(gomock.Any()).Return(nil)
			deps.connectionRepo.EXPECT().UpdateLastSyncAt("conn-1", gomock.Any()).Return(nil)

			_, err := service.RunSync(ctx, connection, tt.syncType)

			assert.NoError(t, err)
		})
	}
}

func TestService_InsightWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _ := newTestService(ctrl)

	t.Run("Incremental usa a janela curta", func(t *testing.T) {
		start, end := service.insightWindow(domain.SyncTypeIncremental)
		assert.Equal(t, 6, int(end.Sub(start).Hours()/24))
	})

	t.Run("Full usa a janela longa", func(t *testing.T) {
		start, end := service.insightWindow(domain.SyncTypeFull)
		assert.Equal(t, 89, int(end.Sub(start).Hours()/24))
	})

	t.Run("Janela mínima é de um dia", func(t *testing.T) {
		service.cfg.IncrementalLookbackDays = 0
		defer func() { service.cfg.IncrementalLookbackDays = 7 }()

		start, end := service.insightWindow(domain.SyncTypeIncremental)
		assert.True(t, start.Equal(end))
	})
}
