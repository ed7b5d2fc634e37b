package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
)

const (
	defaultChangesLimit = 50
	maxChangesLimit     = 500
)

// ListRecentChanges retorna os eventos de mudança mais recentes de uma
// conta, do mais novo para o mais antigo
func ListRecentChanges(changeHistory repository.ChangeHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ListRecentChanges")

		accountID, ok := resolveAccountID(w, r, r.URL.Query().Get("account_id"))
		if !ok {
			return
		}

		limit := parseLimit(r.URL.Query().Get("limit"))

		events, err := changeHistory.ListRecent(accountID, limit)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar mudanças recentes")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar as mudanças", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"account_id": accountID,
			"changes":    events,
		})
	}
}

// ListEntityChanges retorna o histórico de mudanças de uma entidade
// específica da conta
func ListEntityChanges(changeHistory repository.ChangeHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ListEntityChanges")

		params := httprouter.ParamsFromContext(r.Context())
		accountID := params.ByName("id")
		entityType := domain.EntityType(params.ByName("type"))
		entityID := params.ByName("entity_id")

		if !entityType.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de entidade inválido. Valores aceitos: ad_account, campaign, ad_group, ad", nil)
			return
		}

		if !canAccessAccount(r, accountID) {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
			return
		}

		limit := parseLimit(r.URL.Query().Get("limit"))

		events, err := changeHistory.ListByEntity(accountID, entityType, entityID, limit)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar mudanças da entidade")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar as mudanças", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"account_id":  accountID,
			"entity_type": entityType,
			"entity_id":   entityID,
			"changes":     events,
		})
	}
}

func parseLimit(raw string) uint64 {
	if raw == "" {
		return defaultChangesLimit
	}

	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || limit == 0 {
		return defaultChangesLimit
	}

	if limit > maxChangesLimit {
		return maxChangesLimit
	}

	return limit
}
