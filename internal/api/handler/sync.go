package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/scheduler"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/middleware"
)

// SyncServices agrupa as dependências dos handlers de sincronização
type SyncServices struct {
	Scheduler   *scheduler.ProviderSyncService
	SyncHistory repository.SyncHistoryRepository
	Connections repository.ConnectionRepository
}

// RunProviderSync dispara manualmente a sincronização da conexão da
// conta com o provedor informado na URL
func RunProviderSync(services SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunProviderSync")

		prov := domain.Provider(httprouter.ParamsFromContext(r.Context()).ByName("provider"))
		if !prov.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrProviderUnsupported, "Provedor inválido. Valores aceitos: meta, google", nil)
			return
		}

		accountID, ok := resolveAccountID(w, r, r.URL.Query().Get("account_id"))
		if !ok {
			return
		}

		run, err := services.Scheduler.TriggerManualSync(r.Context(), accountID, prov)
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrConnectionNotFound):
				apiErrors.WriteError(w, apiErrors.ErrConnectionNotFound, "Não há conexão desta conta com o provedor informado", nil)
			case errors.Is(err, syncing.ErrAlreadyRunning):
				apiErrors.WriteError(w, apiErrors.ErrSyncAlreadyRunning, "Já existe uma sincronização em andamento para esta conexão", nil)
			default:
				logrus.WithError(err).Error("Erro ao disparar sincronização manual")
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao disparar a sincronização", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(run)
	}
}

// RunProviderBackfill dispara um backfill para a conexão da conta com o
// provedor informado na URL. Ao contrário do sync manual, o backfill
// reescreve insights de datas passadas já consolidados.
func RunProviderBackfill(services SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunProviderBackfill")

		prov := domain.Provider(httprouter.ParamsFromContext(r.Context()).ByName("provider"))
		if !prov.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrProviderUnsupported, "Provedor inválido. Valores aceitos: meta, google", nil)
			return
		}

		accountID, ok := resolveAccountID(w, r, r.URL.Query().Get("account_id"))
		if !ok {
			return
		}

		run, err := services.Scheduler.TriggerBackfill(r.Context(), accountID, prov)
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrConnectionNotFound):
				apiErrors.WriteError(w, apiErrors.ErrConnectionNotFound, "Não há conexão desta conta com o provedor informado", nil)
			case errors.Is(err, syncing.ErrAlreadyRunning):
				apiErrors.WriteError(w, apiErrors.ErrSyncAlreadyRunning, "Já existe uma sincronização em andamento para esta conexão", nil)
			default:
				logrus.WithError(err).Error("Erro ao disparar backfill")
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao disparar o backfill", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(run)
	}
}

// GetSyncRun retorna uma execução de sincronização pelo ID
func GetSyncRun(services SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetSyncRun")

		runID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if runID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da execução não informado", nil)
			return
		}

		run, err := services.SyncHistory.GetByID(runID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao buscar execução de sincronização")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar a execução", nil)
			return
		}
		if run == nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncRunNotFound, "Execução de sincronização não encontrada", nil)
			return
		}

		if !canAccessAccount(r, run.AccountID) {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(run)
	}
}

// GetLastSyncRun retorna a última execução da conexão da conta com o
// provedor informado
func GetLastSyncRun(services SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetLastSyncRun")

		prov := domain.Provider(r.URL.Query().Get("provider"))
		if !prov.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrProviderUnsupported, "Provedor inválido. Valores aceitos: meta, google", nil)
			return
		}

		accountID, ok := resolveAccountID(w, r, r.URL.Query().Get("account_id"))
		if !ok {
			return
		}

		connection, err := services.Connections.GetByAccountAndProvider(accountID, prov)
		if err != nil {
			logrus.WithError(err).Error("Erro ao buscar conexão")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar a conexão", nil)
			return
		}
		if connection == nil {
			apiErrors.WriteError(w, apiErrors.ErrConnectionNotFound, "Não há conexão desta conta com o provedor informado", nil)
			return
		}

		run, err := services.SyncHistory.GetLastByConnection(connection.ID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao buscar última execução")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar a última execução", nil)
			return
		}
		if run == nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncRunNotFound, "Esta conexão ainda não foi sincronizada", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(run)
	}
}

// GetCronStatus retorna o status do agendador de sincronização
func GetCronStatus(services SyncServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"provider_sync": services.Scheduler.GetStatus(),
		})
	}
}

// resolveAccountID decide a conta alvo da requisição: administradores e
// supervisores podem informar qualquer conta; clientes ficam presos à
// conta das próprias claims.
func resolveAccountID(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
		return "", false
	}

	if userClaims.UserRoleID == middleware.RoleClient {
		if userClaims.AccountID == "" {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Usuário sem conta vinculada", nil)
			return "", false
		}
		return userClaims.AccountID, true
	}

	if requested == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Parâmetro account_id não informado", nil)
		return "", false
	}

	return requested, true
}

func canAccessAccount(r *http.Request, accountID string) bool {
	userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	if !ok {
		return false
	}

	if userClaims.UserRoleID != middleware.RoleClient {
		return true
	}

	return userClaims.AccountID == accountID
}
