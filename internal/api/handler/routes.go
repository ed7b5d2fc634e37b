package handler

import (
	"net/http"

	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/api/handler/router"
	"github.com/vfg2006/adsync-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Sync(services SyncServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sync/:provider/run",
			Method:      http.MethodPost,
			Handler:     RunProviderSync(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/sync/:provider/backfill",
			Method:      http.MethodPost,
			Handler:     RunProviderBackfill(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/sync/runs/:id",
			Method:      http.MethodGet,
			Handler:     GetSyncRun(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/sync/last",
			Method:      http.MethodGet,
			Handler:     GetLastSyncRun(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

// Changes retorna as rotas de consulta do histórico de mudanças
func Changes(changeHistory repository.ChangeHistoryRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/changes/recent",
			Method:      http.MethodGet,
			Handler:     ListRecentChanges(changeHistory),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/accounts/:id/entities/:type/:entity_id/changes",
			Method:      http.MethodGet,
			Handler:     ListEntityChanges(changeHistory),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}
