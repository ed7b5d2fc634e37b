package syncing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/aggregating"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	"github.com/vfg2006/adsync-api/internal/usecases/tokening"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// ErrAlreadyRunning indica que a conexão já tem uma sincronização ativa.
// Um segundo trigger concorrente é um no-op, nunca uma execução dupla.
var ErrAlreadyRunning = errors.New("já existe uma sincronização em andamento para esta conexão")

// Orchestrator executa o pipeline completo de sincronização de uma
// conexão: credenciais, hierarquia de entidades e insights.
type Orchestrator interface {
	RunSync(ctx context.Context, connection *domain.Connection, syncType domain.SyncType) (*domain.SyncRun, error)
}

type Service struct {
	cfg             config.ProviderSync
	registry        *provider.Registry
	tokenManager    tokening.TokenManager
	reconciler      reconciling.Reconciler
	aggregator      aggregating.Aggregator
	connectionRepo  repository.ConnectionRepository
	syncHistoryRepo repository.SyncHistoryRepository
	locker          postgres.Locker
	retryCfg        provider.RetryConfig
}

func NewService(
	cfg config.ProviderSync,
	registry *provider.Registry,
	tokenManager tokening.TokenManager,
	reconciler reconciling.Reconciler,
	aggregator aggregating.Aggregator,
	connectionRepo repository.ConnectionRepository,
	syncHistoryRepo repository.SyncHistoryRepository,
	locker postgres.Locker,
) *Service {
	return &Service{
		cfg:             cfg,
		registry:        registry,
		tokenManager:    tokenManager,
		reconciler:      reconciler,
		aggregator:      aggregator,
		connectionRepo:  connectionRepo,
		syncHistoryRepo: syncHistoryRepo,
		locker:          locker,
		retryCfg:        provider.DefaultRetryConfig(),
	}
}

// runState carrega o progresso mutável de uma execução. As credenciais
// ficam aqui para que um refresh no meio da execução alcance os passos
// seguintes.
type runState struct {
	run        *domain.SyncRun
	connection *domain.Connection
	client     provider.Client
	creds      domain.Credentials
	counts     domain.SyncCounts
	syncErrors []domain.SyncError
	authFailed bool
}

// RunSync executa a sincronização de uma conexão de ponta a ponta.
// Falhas de passo são registradas e a execução segue em largura; apenas
// credenciais irrecuperáveis abortam a execução inteira.
func (s *Service) RunSync(ctx context.Context, connection *domain.Connection, syncType domain.SyncType) (*domain.SyncRun, error) {
	acquired, err := s.locker.TryLock(connection.ID)
	if err != nil {
		return nil, fmt.Errorf("erro ao adquirir o lock da conexão: %w", err)
	}
	if !acquired {
		logrus.WithFields(logrus.Fields{
			"connection_id": connection.ID,
			"provider":      string(connection.Provider),
		}).Info("Sincronização ignorada: conexão já está sendo sincronizada")
		return nil, ErrAlreadyRunning
	}
	defer func() {
		if err := s.locker.Unlock(connection.ID); err != nil {
			logrus.Errorf("Erro ao liberar o lock da conexão %s: %v", connection.ID, err)
		}
	}()

	run, err := s.createRun(connection, syncType)
	if err != nil {
		return nil, err
	}

	state := &runState{
		run:        run,
		connection: connection,
	}

	s.execute(ctx, state, syncType)

	if err := s.finalize(state); err != nil {
		return run, err
	}

	return run, nil
}

func (s *Service) createRun(connection *domain.Connection, syncType domain.SyncType) (*domain.SyncRun, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	run := &domain.SyncRun{
		ID:           id,
		ConnectionID: connection.ID,
		AccountID:    connection.AccountID,
		Provider:     connection.Provider,
		SyncType:     syncType,
		Status:       domain.SyncRunStatusPending,
		StartedAt:    time.Now(),
	}

	if err := s.syncHistoryRepo.Create(run); err != nil {
		return nil, fmt.Errorf("erro ao registrar a execução: %w", err)
	}

	if err := s.syncHistoryRepo.UpdateStatus(run.ID, domain.SyncRunStatusRunning); err != nil {
		logrus.Errorf("Erro ao marcar a execução %s como running: %v", run.ID, err)
	}
	run.Status = domain.SyncRunStatusRunning

	return run, nil
}

func (s *Service) execute(ctx context.Context, state *runState, syncType domain.SyncType) {
	creds, err := s.tokenManager.EnsureValidToken(ctx, state.connection)
	if err != nil {
		state.authFailed = true
		state.syncErrors = append(state.syncErrors, domain.SyncError{
			Step:     "credentials",
			Category: string(provider.KindOf(err)),
			Message:  err.Error(),
		})
		return
	}
	state.creds = creds

	client, err := s.registry.Get(state.connection.Provider)
	if err != nil {
		state.syncErrors = append(state.syncErrors, domain.SyncError{
			Step:     "credentials",
			Category: string(provider.KindFatal),
			Message:  err.Error(),
		})
		return
	}
	state.client = client

	remoteAccounts, err := s.listAdAccounts(ctx, state)
	if err != nil {
		s.recordStepError(state, "ad_accounts", "", err)
		return
	}

	outcome, accountIDs, err := s.reconciler.ReconcileAdAccounts(state.connection, remoteAccounts)
	state.counts.AdAccounts += outcome.Total()
	state.syncErrors = append(state.syncErrors, outcome.Rejected...)
	if err != nil {
		s.recordStepError(state, "reconcile_ad_accounts", "", err)
		return
	}
	s.persistCounts(state)

	start, end := s.insightWindow(syncType)
	// Insights de datas passadas são imutáveis; só o backfill explícito
	// pode reescrevê-los.
	forceOverwrite := syncType == domain.SyncTypeBackfill

	for _, remote := range remoteAccounts {
		if state.authFailed || ctx.Err() != nil {
			break
		}
		s.syncAccountTree(ctx, state, remote.ExternalID, accountIDs, start, end, forceOverwrite)
	}
}

// syncAccountTree sincroniza a hierarquia e os insights de uma conta de
// anúncios. Cada passo falha de forma isolada.
func (s *Service) syncAccountTree(ctx context.Context, state *runState, accountExternalID string, accountIDs map[string]string, start, end time.Time, forceOverwrite bool) {
	connection := state.connection

	// Campanhas
	var remoteCampaigns []provider.RemoteCampaign
	err := s.callProvider(ctx, state, "campaigns", func() error {
		campaigns, itemErrors, callErr := state.client.ListCampaigns(ctx, state.creds, accountExternalID)
		if callErr != nil {
			return callErr
		}
		remoteCampaigns = campaigns
		s.recordItemErrors(state, "campaigns", itemErrors)
		return nil
	})

	campaignIDs := make(map[string]string)
	if err != nil {
		s.recordStepError(state, "campaigns", accountExternalID, err)
	} else {
		outcome, ids, recErr := s.reconciler.ReconcileCampaigns(connection, accountIDs[accountExternalID], remoteCampaigns)
		state.counts.Campaigns += outcome.Total()
		state.syncErrors = append(state.syncErrors, outcome.Rejected...)
		if recErr != nil {
			s.recordStepError(state, "reconcile_campaigns", accountExternalID, recErr)
		}
		campaignIDs = ids
	}
	s.persistCounts(state)

	if state.authFailed {
		return
	}

	// Grupos de anúncios
	var remoteAdGroups []provider.RemoteAdGroup
	err = s.callProvider(ctx, state, "ad_groups", func() error {
		adGroups, itemErrors, callErr := state.client.ListAdGroups(ctx, state.creds, accountExternalID)
		if callErr != nil {
			return callErr
		}
		remoteAdGroups = adGroups
		s.recordItemErrors(state, "ad_groups", itemErrors)
		return nil
	})

	adGroupIDs := make(map[string]string)
	if err != nil {
		s.recordStepError(state, "ad_groups", accountExternalID, err)
	} else {
		outcome, ids, recErr := s.reconciler.ReconcileAdGroups(connection, campaignIDs, remoteAdGroups)
		state.counts.AdGroups += outcome.Total()
		state.syncErrors = append(state.syncErrors, outcome.Rejected...)
		if recErr != nil {
			s.recordStepError(state, "reconcile_ad_groups", accountExternalID, recErr)
		}
		adGroupIDs = ids
	}
	s.persistCounts(state)

	if state.authFailed {
		return
	}

	// Anúncios
	var remoteAds []provider.RemoteAd
	err = s.callProvider(ctx, state, "ads", func() error {
		ads, itemErrors, callErr := state.client.ListAds(ctx, state.creds, accountExternalID)
		if callErr != nil {
			return callErr
		}
		remoteAds = ads
		s.recordItemErrors(state, "ads", itemErrors)
		return nil
	})

	adIDs := make(map[string]string)
	if err != nil {
		s.recordStepError(state, "ads", accountExternalID, err)
	} else {
		outcome, ids, recErr := s.reconciler.ReconcileAds(connection, adGroupIDs, remoteAds)
		state.counts.Ads += outcome.Total()
		state.syncErrors = append(state.syncErrors, outcome.Rejected...)
		if recErr != nil {
			s.recordStepError(state, "reconcile_ads", accountExternalID, recErr)
		}
		adIDs = ids
	}
	s.persistCounts(state)

	if state.authFailed {
		return
	}

	// Insights por nível da hierarquia
	levels := []struct {
		entityType domain.EntityType
		localIDs   map[string]string
	}{
		{domain.EntityTypeAdAccount, accountLevelIDs(accountExternalID, accountIDs)},
		{domain.EntityTypeCampaign, campaignIDs},
		{domain.EntityTypeAdGroup, adGroupIDs},
		{domain.EntityTypeAd, adIDs},
	}

	for _, level := range levels {
		if state.authFailed || ctx.Err() != nil {
			return
		}
		s.syncInsights(ctx, state, accountExternalID, level.entityType, level.localIDs, start, end, forceOverwrite)
	}
}

func (s *Service) syncInsights(ctx context.Context, state *runState, accountExternalID string, entityType domain.EntityType, localIDs map[string]string, start, end time.Time, forceOverwrite bool) {
	if len(localIDs) == 0 {
		return
	}

	externalIDs := make([]string, 0, len(localIDs))
	for externalID := range localIDs {
		externalIDs = append(externalIDs, externalID)
	}

	step := fmt.Sprintf("insights_%s", entityType)

	var raws []provider.RawInsight
	err := s.callProvider(ctx, state, step, func() error {
		insights, itemErrors, callErr := state.client.FetchInsights(ctx, state.creds, accountExternalID, entityType, externalIDs, start, end)
		if callErr != nil {
			return callErr
		}
		raws = insights
		s.recordItemErrors(state, step, itemErrors)
		return nil
	})
	if err != nil {
		s.recordStepError(state, step, accountExternalID, err)
		return
	}

	written, skipped, aggErrors, err := s.aggregator.UpsertInsights(state.connection, entityType, localIDs, raws, forceOverwrite)
	state.counts.Insights += written
	state.syncErrors = append(state.syncErrors, aggErrors...)
	if err != nil {
		s.recordStepError(state, step, accountExternalID, err)
	}
	if skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"connection_id": state.connection.ID,
			"run_id":        state.run.ID,
			"step":          step,
			"skipped":       skipped,
		}).Debug("Insights de datas passadas preservados por imutabilidade")
	}
	s.persistCounts(state)
}

// callProvider aplica o backoff de rate limit/transitórios e, em erro de
// auth, tenta uma única renovação de token antes de repetir a chamada.
// Auth rejeitado após renovação marca a conexão como expirada e aborta a
// execução.
func (s *Service) callProvider(ctx context.Context, state *runState, step string, fn func() error) error {
	err := provider.WithRetry(ctx, s.retryCfg, step, fn)
	if err == nil || !provider.IsAuth(err) {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": state.connection.ID,
		"step":          step,
	}).Warn("Token rejeitado pelo provedor durante a execução, renovando e repetindo a chamada")

	newCreds, refreshErr := s.tokenManager.ForceRefresh(ctx, state.connection)
	if refreshErr != nil {
		state.authFailed = true
		return err
	}
	state.creds = newCreds

	err = provider.WithRetry(ctx, s.retryCfg, step, fn)
	if err != nil && provider.IsAuth(err) {
		state.authFailed = true
		if updateErr := s.connectionRepo.UpdateStatus(state.connection.ID, domain.ConnectionStatusExpired); updateErr != nil {
			logrus.Errorf("Erro ao marcar a conexão %s como expirada: %v", state.connection.ID, updateErr)
		}
	}

	return err
}

// listAdAccounts busca as contas do provedor e aplica a seleção da
// conexão, quando houver.
func (s *Service) listAdAccounts(ctx context.Context, state *runState) ([]provider.RemoteAdAccount, error) {
	var remoteAccounts []provider.RemoteAdAccount

	err := s.callProvider(ctx, state, "ad_accounts", func() error {
		accounts, itemErrors, callErr := state.client.ListAdAccounts(ctx, state.creds)
		if callErr != nil {
			return callErr
		}
		remoteAccounts = accounts
		s.recordItemErrors(state, "ad_accounts", itemErrors)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(state.connection.SelectedExternalIDs) == 0 {
		return remoteAccounts, nil
	}

	selected := make(map[string]struct{}, len(state.connection.SelectedExternalIDs))
	for _, externalID := range state.connection.SelectedExternalIDs {
		selected[externalID] = struct{}{}
	}

	filtered := make([]provider.RemoteAdAccount, 0, len(selected))
	for _, account := range remoteAccounts {
		if _, ok := selected[account.ExternalID]; ok {
			filtered = append(filtered, account)
		}
	}

	return filtered, nil
}

func (s *Service) insightWindow(syncType domain.SyncType) (time.Time, time.Time) {
	lookbackDays := s.cfg.FullLookbackDays
	if syncType == domain.SyncTypeIncremental {
		lookbackDays = s.cfg.IncrementalLookbackDays
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	end := utils.TruncateToDay(time.Now())
	start := end.AddDate(0, 0, -(lookbackDays - 1))
	return start, end
}

func (s *Service) recordStepError(state *runState, step, externalID string, err error) {
	state.syncErrors = append(state.syncErrors, domain.SyncError{
		Step:       step,
		ExternalID: externalID,
		Category:   string(provider.KindOf(err)),
		Message:    err.Error(),
	})

	logrus.WithFields(logrus.Fields{
		"connection_id": state.connection.ID,
		"run_id":        state.run.ID,
		"step":          step,
		"external_id":   externalID,
		"error":         err.Error(),
	}).Error("Falha de passo durante a sincronização")
}

func (s *Service) recordItemErrors(state *runState, step string, itemErrors []provider.ItemError) {
	for _, itemError := range itemErrors {
		state.syncErrors = append(state.syncErrors, domain.SyncError{
			Step:       step,
			ExternalID: itemError.ExternalID,
			Category:   string(provider.KindFatal),
			Message:    itemError.Err.Error(),
		})
	}
}

func (s *Service) persistCounts(state *runState) {
	if err := s.syncHistoryRepo.UpdateCounts(state.run.ID, state.counts); err != nil {
		logrus.Errorf("Erro ao persistir os contadores da execução %s: %v", state.run.ID, err)
	}
}

// finalize decide o status terminal e grava o desfecho. Execução sem
// erros é success; com progresso parcial é partial_failure; sem nenhum
// progresso é failed.
func (s *Service) finalize(state *runState) error {
	run := state.run
	run.Counts = state.counts
	run.Errors = state.syncErrors

	progress := state.counts.AdAccounts + state.counts.Campaigns + state.counts.AdGroups + state.counts.Ads + state.counts.Insights

	switch {
	case len(state.syncErrors) == 0:
		run.Status = domain.SyncRunStatusSuccess
	case progress > 0:
		run.Status = domain.SyncRunStatusPartialFailure
	default:
		run.Status = domain.SyncRunStatusFailed
	}

	if run.Status == domain.SyncRunStatusFailed && len(state.syncErrors) > 0 {
		message := state.syncErrors[0].Message
		run.ErrorMessage = &message
	}

	completedAt := time.Now()
	run.CompletedAt = &completedAt

	if err := s.syncHistoryRepo.Finalize(run); err != nil {
		return fmt.Errorf("erro ao finalizar a execução: %w", err)
	}

	if run.Status != domain.SyncRunStatusFailed {
		if err := s.connectionRepo.UpdateLastSyncAt(state.connection.ID, completedAt); err != nil {
			logrus.Errorf("Erro ao atualizar last_sync_at da conexão %s: %v", state.connection.ID, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"run_id":        run.ID,
		"connection_id": run.ConnectionID,
		"provider":      string(run.Provider),
		"status":        string(run.Status),
		"duration":      completedAt.Sub(run.StartedAt).String(),
		"errors":        len(run.Errors),
	}).Info("Sincronização finalizada")

	return nil
}

func accountLevelIDs(accountExternalID string, accountIDs map[string]string) map[string]string {
	localID, ok := accountIDs[accountExternalID]
	if !ok {
		return nil
	}
	return map[string]string{accountExternalID: localID}
}
