package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	syncingmocks "github.com/vfg2006/adsync-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func newTestService(ctrl *gomock.Controller) (*ProviderSyncService, *mocks.MockConnectionRepository, *syncingmocks.MockOrchestrator) {
	connectionRepo := mocks.NewMockConnectionRepository(ctrl)
	orchestrator := syncingmocks.NewMockOrchestrator(ctrl)

	cfg := config.ProviderSync{
		CronSchedule:             "*/10 * * * *",
		MinIntervalMinutes:       50,
		MaxConcurrentConnections: 2,
		IncrementalLookbackDays:  2,
		FullLookbackDays:         30,
		Enabled:                  true,
	}

	return NewProviderSyncService(cfg, connectionRepo, orchestrator), connectionRepo, orchestrator
}

func dueConnection(id string, lastSyncAt *time.Time) *domain.Connection {
	return &domain.Connection{
		ID:         id,
		AccountID:  "ACC001",
		Provider:   domain.ProviderMeta,
		Status:     domain.ConnectionStatusActive,
		LastSyncAt: lastSyncAt,
	}
}

func TestProviderSyncService_SyncDueConnections(t *testing.T) {
	ctx := context.Background()

	t.Run("Primeira sincronização da conexão é completa, as demais incrementais", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, orchestrator := newTestService(ctrl)

		lastSync := time.Now().Add(-2 * time.Hour)
		fresh := dueConnection("conn-nova", nil)
		known := dueConnection("conn-antiga", &lastSync)

		connectionRepo.EXPECT().
			ListDue(50 * time.Minute).
			Return([]*domain.Connection{fresh, known}, nil)

		orchestrator.EXPECT().
			RunSync(ctx, fresh, domain.SyncTypeFull).
			Return(&domain.SyncRun{ID: "run-1", Status: domain.SyncRunStatusSuccess}, nil)
		orchestrator.EXPECT().
			RunSync(ctx, known, domain.SyncTypeIncremental).
			Return(&domain.SyncRun{ID: "run-2", Status: domain.SyncRunStatusSuccess}, nil)

		service.syncDueConnections(ctx)
	})

	t.Run("Erro ao buscar conexões elegíveis não dispara sincronizações", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, _ := newTestService(ctrl)

		connectionRepo.EXPECT().
			ListDue(gomock.Any()).
			Return(nil, errors.New("connection refused"))

		service.syncDueConnections(ctx)
	})

	t.Run("Conexão já em sincronização é um no-op silencioso", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, orchestrator := newTestService(ctrl)

		lastSync := time.Now().Add(-2 * time.Hour)
		connection := dueConnection("conn-1", &lastSync)

		connectionRepo.EXPECT().
			ListDue(gomock.Any()).
			Return([]*domain.Connection{connection}, nil)

		orchestrator.EXPECT().
			RunSync(ctx, connection, domain.SyncTypeIncremental).
			Return(nil, syncing.ErrAlreadyRunning)

		service.syncDueConnections(ctx)
	})

	t.Run("Tick atualiza o status do agendador", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, _ := newTestService(ctrl)

		connectionRepo.EXPECT().ListDue(gomock.Any()).Return(nil, nil)

		service.syncDueConnections(ctx)

		status := service.GetStatus()
		assert.Equal(t, false, status["tick_running"])
		assert.Equal(t, true, status["sync_enabled"])
		assert.Equal(t, 50, status["min_interval_minutes"])
		assert.False(t, status["last_tick_started_at"].(time.Time).IsZero())
	})
}

func TestProviderSyncService_TriggerManualSync(t *testing.T) {
	ctx := context.Background()

	t.Run("Conexão inexistente retorna ErrConnectionNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, _ := newTestService(ctrl)

		connectionRepo.EXPECT().
			GetByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return(nil, nil)

		_, err := service.TriggerManualSync(ctx, "ACC001", domain.ProviderMeta)

		assert.ErrorIs(t, err, ErrConnectionNotFound)
	})

	t.Run("Trigger manual dispara uma sincronização do tipo manual", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, orchestrator := newTestService(ctrl)

		connection := dueConnection("conn-1", nil)

		connectionRepo.EXPECT().
			GetByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return(connection, nil)

		orchestrator.EXPECT().
			RunSync(ctx, connection, domain.SyncTypeManual).
			Return(&domain.SyncRun{ID: "run-1", Status: domain.SyncRunStatusRunning}, nil)

		run, err := service.TriggerManualSync(ctx, "ACC001", domain.ProviderMeta)

		assert.NoError(t, err)
		assert.Equal(t, "run-1", run.ID)
	})
}

func TestProviderSyncService_TriggerBackfill(t *testing.T) {
	ctx := context.Background()

	t.Run("Backfill dispara uma sincronização do tipo backfill", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, orchestrator := newTestService(ctrl)

		connection := dueConnection("conn-1", nil)

		connectionRepo.EXPECT().
			GetByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return(connection, nil)

		orchestrator.EXPECT().
			RunSync(ctx, connection, domain.SyncTypeBackfill).
			Return(&domain.SyncRun{ID: "run-1", Status: domain.SyncRunStatusRunning}, nil)

		run, err := service.TriggerBackfill(ctx, "ACC001", domain.ProviderMeta)

		assert.NoError(t, err)
		assert.Equal(t, "run-1", run.ID)
	})

	t.Run("Conexão inexistente retorna ErrConnectionNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, connectionRepo, _ := newTestService(ctrl)

		connectionRepo.EXPECT().
			GetByAccountAndProvider("ACC001", domain.ProviderMeta).
			Return(nil, nil)

		_, err := service.TriggerBackfill(ctx, "ACC001", domain.ProviderMeta)

		assert.ErrorIs(t, err, ErrConnectionNotFound)
	})
}
