package provider

import (
	"context"
	"time"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// RemoteAdAccount é uma conta de anúncios como reportada pelo provedor,
// já normalizada na fronteira do client. Nenhum blob não tipado passa
// deste pacote para dentro do reconciliador.
type RemoteAdAccount struct {
	ExternalID string
	Name       string
	Currency   string
	Timezone   string
	Status     domain.EntityStatus
}

type RemoteCampaign struct {
	ExternalID string
	Name       string
	Status     domain.EntityStatus
	Objective  string
	// DailyBudget em unidades da moeda da conta; nil quando o provedor não reporta.
	DailyBudget *float64
	Raw         map[string]any
}

type RemoteAdGroup struct {
	ExternalID         string
	CampaignExternalID string
	Name               string
	Status             domain.EntityStatus
	DailyBudget        *float64
	Targeting          map[string]any
	Raw                map[string]any
}

type RemoteAd struct {
	ExternalID        string
	AdGroupExternalID string
	Name              string
	Status            domain.EntityStatus
	Creative          map[string]any
	Raw               map[string]any
}

// Action é uma entrada do array de ações de um insight (ex.: Meta
// "actions": [{"action_type": "like", "value": "12"}]).
type Action struct {
	Type  string
	Value float64
}

// RawInsight é o snapshot diário de métricas de uma entidade, como
// retornado pelo provedor. Ratios reportados são mantidos para
// verificação cruzada; o agregador rederiva localmente.
type RawInsight struct {
	EntityExternalID string
	Date             time.Time
	Impressions      int64
	Clicks           int64
	Spend            float64
	CTR              float64
	CPC              float64
	CPM              float64
	Actions          []Action
	Raw              map[string]any
}

// ItemError é uma falha de um registro individual dentro de uma página de
// resultados. Um registro malformado nunca aborta a página inteira.
type ItemError struct {
	ExternalID string
	Err        error
}

// Client é o contrato uniforme sobre as APIs heterogêneas dos provedores.
// Cada método retorna resultados parciais acompanhados da lista de erros
// por item.
type Client interface {
	Provider() domain.Provider

	ValidateConnection(ctx context.Context, creds domain.Credentials) (bool, error)
	RefreshCredentials(ctx context.Context, creds domain.Credentials) (*domain.Credentials, error)

	ListAdAccounts(ctx context.Context, creds domain.Credentials) ([]RemoteAdAccount, []ItemError, error)
	ListCampaigns(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]RemoteCampaign, []ItemError, error)
	ListAdGroups(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]RemoteAdGroup, []ItemError, error)
	ListAds(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]RemoteAd, []ItemError, error)

	FetchInsights(ctx context.Context, creds domain.Credentials, accountExternalID string, entityType domain.EntityType, entityExternalIDs []string, start, end time.Time) ([]RawInsight, []ItemError, error)
}
