package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
)

// ErrConnectionNotFound indica que não há conexão para o par
// (conta, provedor) informado no trigger manual.
var ErrConnectionNotFound = errors.New("conexão não encontrada para a conta e provedor informados")

// ProviderSyncService agenda e dispara a sincronização das conexões
// elegíveis. O tick é frequente; o intervalo mínimo por conexão é quem
// controla a cadência real.
type ProviderSyncService struct {
	scheduler       *gocron.Scheduler
	cfg             config.ProviderSync
	connectionRepo  repository.ConnectionRepository
	orchestrator    syncing.Orchestrator
	tickRunning     bool
	tickMutex       sync.Mutex
	lastTickStarted time.Time
	lastTickEnded   time.Time
}

// NewProviderSyncService cria o serviço de agendamento de sincronização
func NewProviderSyncService(
	cfg config.ProviderSync,
	connectionRepo repository.ConnectionRepository,
	orchestrator syncing.Orchestrator,
) *ProviderSyncService {
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":              cfg.CronSchedule,
		"min_interval_minutes":       cfg.MinIntervalMinutes,
		"max_concurrent_connections": cfg.MaxConcurrentConnections,
		"incremental_lookback_days":  cfg.IncrementalLookbackDays,
		"full_lookback_days":         cfg.FullLookbackDays,
		"sync_enabled":               cfg.Enabled,
	}).Info("Configuração do agendador de sincronização de provedores carregada")

	return &ProviderSyncService{
		scheduler:      scheduler,
		cfg:            cfg,
		connectionRepo: connectionRepo,
		orchestrator:   orchestrator,
	}
}

// Start inicia o agendador
func (s *ProviderSyncService) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logrus.Info("Sincronização de provedores desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.cfg.CronSchedule).Info("Iniciando agendador de sincronização de provedores")

	_, err := s.scheduler.Cron(s.cfg.CronSchedule).Do(func() {
		s.syncDueConnections(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de provedores: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de provedores")
		s.scheduler.Stop()
	}()

	return nil
}

// syncDueConnections dispara a sincronização das conexões elegíveis em
// paralelo limitado. O lock por conexão no orquestrador garante que um
// tick longo nunca duplica execuções do tick seguinte.
func (s *ProviderSyncService) syncDueConnections(ctx context.Context) {
	s.tickMutex.Lock()
	if s.tickRunning {
		s.tickMutex.Unlock()
		logrus.Info("Tick de sincronização ainda em andamento, ignorando")
		return
	}
	s.tickRunning = true
	s.lastTickStarted = time.Now()
	s.tickMutex.Unlock()

	defer func() {
		s.tickMutex.Lock()
		s.tickRunning = false
		s.lastTickEnded = time.Now()
		s.tickMutex.Unlock()
	}()

	minInterval := time.Duration(s.cfg.MinIntervalMinutes) * time.Minute

	dueConnections, err := s.connectionRepo.ListDue(minInterval)
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar conexões elegíveis para sincronização")
		return
	}

	if len(dueConnections) == 0 {
		logrus.Debug("Nenhuma conexão elegível para sincronização neste tick")
		return
	}

	logrus.WithField("connections", len(dueConnections)).Info("Conexões elegíveis para sincronização")

	maxConcurrent := s.cfg.MaxConcurrentConnections
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for _, connection := range dueConnections {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *domain.Connection) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			s.syncConnection(ctx, conn)
		}(connection)
	}

	wg.Wait()

	logrus.WithFields(logrus.Fields{
		"connections": len(dueConnections),
		"duration":    time.Since(s.lastTickStarted).String(),
	}).Info("Tick de sincronização concluído")
}

func (s *ProviderSyncService) syncConnection(ctx context.Context, connection *domain.Connection) {
	// Primeira sincronização da conexão é sempre completa
	syncType := domain.SyncTypeIncremental
	if connection.LastSyncAt == nil {
		syncType = domain.SyncTypeFull
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": connection.ID,
		"account_id":    connection.AccountID,
		"provider":      string(connection.Provider),
		"sync_type":     string(syncType),
	}).Info("Disparando sincronização de conexão")

	run, err := s.orchestrator.RunSync(ctx, connection, syncType)
	if err != nil {
		if errors.Is(err, syncing.ErrAlreadyRunning) {
			return
		}
		logrus.WithFields(logrus.Fields{
			"connection_id": connection.ID,
			"error":         err.Error(),
		}).Error("Erro ao sincronizar conexão")
		return
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": connection.ID,
		"run_id":        run.ID,
		"status":        string(run.Status),
	}).Info("Sincronização de conexão concluída")
}

// TriggerManualSync dispara de forma síncrona uma sincronização para a
// conexão da conta com o provedor informado. Não reescreve insights de
// datas passadas.
func (s *ProviderSyncService) TriggerManualSync(ctx context.Context, accountID string, prov domain.Provider) (*domain.SyncRun, error) {
	return s.triggerSync(ctx, accountID, prov, domain.SyncTypeManual)
}

// TriggerBackfill dispara uma sincronização de backfill, a única que
// reescreve insights já consolidados de datas passadas.
func (s *ProviderSyncService) TriggerBackfill(ctx context.Context, accountID string, prov domain.Provider) (*domain.SyncRun, error) {
	return s.triggerSync(ctx, accountID, prov, domain.SyncTypeBackfill)
}

func (s *ProviderSyncService) triggerSync(ctx context.Context, accountID string, prov domain.Provider, syncType domain.SyncType) (*domain.SyncRun, error) {
	connection, err := s.connectionRepo.GetByAccountAndProvider(accountID, prov)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, ErrConnectionNotFound
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": connection.ID,
		"account_id":    accountID,
		"provider":      string(prov),
		"sync_type":     string(syncType),
	}).Info("Iniciando sincronização sob demanda")

	return s.orchestrator.RunSync(ctx, connection, syncType)
}

// GetStatus retorna o status atual do agendador
func (s *ProviderSyncService) GetStatus() map[string]any {
	s.tickMutex.Lock()
	defer s.tickMutex.Unlock()

	return map[string]any{
		"sync_enabled":               s.cfg.Enabled,
		"sync_cron":                  s.cfg.CronSchedule,
		"min_interval_minutes":       s.cfg.MinIntervalMinutes,
		"max_concurrent_connections": s.cfg.MaxConcurrentConnections,
		"incremental_lookback_days":  s.cfg.IncrementalLookbackDays,
		"full_lookback_days":         s.cfg.FullLookbackDays,
		"tick_running":               s.tickRunning,
		"last_tick_started_at":       s.lastTickStarted,
		"last_tick_ended_at":         s.lastTickEnded,
	}
}
