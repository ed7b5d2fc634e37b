package aggregating

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// actionFieldMap traduz os tipos de ação dos provedores para as colunas
// de engajamento. Tipos fora do mapa ficam apenas no raw_actions.
var actionFieldMap = map[string]string{
	"like":                        "likes",
	"post_reaction":               "likes",
	"comment":                     "comments",
	"post":                        "shares",
	"share":                       "shares",
	"onsite_conversion.post_save": "saves",
	"video_view":                  "video_views",
}

// Aggregator materializa os snapshots diários de métricas respeitando a
// imutabilidade de datas passadas. Retorna quantas linhas foram gravadas
// e quantas foram puladas por imutabilidade.
type Aggregator interface {
	UpsertInsights(connection *domain.Connection, entityType domain.EntityType, localIDs map[string]string, raws []provider.RawInsight, forceOverwrite bool) (int, int, []domain.SyncError, error)
}

type Service struct {
	insightRepo repository.InsightRepository

	now func() time.Time
}

func NewService(insightRepo repository.InsightRepository) *Service {
	return &Service{
		insightRepo: insightRepo,
		now:         time.Now,
	}
}

// UpsertInsights grava uma linha por (entidade, dia). Dias passados já
// persistidos são imutáveis, a menos que forceOverwrite seja informado
// (backfill de janela de atribuição); o dia corrente é sempre reescrito
// porque os provedores revisam métricas intradiárias.
func (s *Service) UpsertInsights(
	connection *domain.Connection,
	entityType domain.EntityType,
	localIDs map[string]string,
	raws []provider.RawInsight,
	forceOverwrite bool,
) (int, int, []domain.SyncError, error) {
	written := 0
	skipped := 0
	syncErrors := make([]domain.SyncError, 0)

	for _, raw := range raws {
		entityID, ok := localIDs[raw.EntityExternalID]
		if !ok {
			syncErrors = append(syncErrors, domain.SyncError{
				Step:       fmt.Sprintf("insights_%s", entityType),
				ExternalID: raw.EntityExternalID,
				Category:   "reconciliation",
				Message:    "insight de entidade desconhecida para a conta",
			})
			continue
		}

		insight := s.buildInsight(connection, entityType, entityID, raw)

		existing, err := s.insightRepo.GetByEntityAndDate(entityType, entityID, insight.Date, domain.InsightWindowDay)
		if err != nil {
			return written, skipped, syncErrors, fmt.Errorf("erro ao consultar o insight existente: %w", err)
		}

		if existing == nil {
			if err := s.insightRepo.Insert(insight); err != nil {
				return written, skipped, syncErrors, fmt.Errorf("erro ao inserir o insight: %w", err)
			}
			written++
			continue
		}

		isToday := domain.IsSameDay(insight.Date, s.now())
		if !isToday && !forceOverwrite {
			skipped++
			continue
		}

		if err := s.insightRepo.Overwrite(insight); err != nil {
			return written, skipped, syncErrors, fmt.Errorf("erro ao sobrescrever o insight: %w", err)
		}
		written++
	}

	return written, skipped, syncErrors, nil
}

func (s *Service) buildInsight(connection *domain.Connection, entityType domain.EntityType, entityID string, raw provider.RawInsight) *domain.Insight {
	insight := &domain.Insight{
		AccountID:   connection.AccountID,
		Provider:    connection.Provider,
		EntityType:  entityType,
		EntityID:    entityID,
		Date:        utils.TruncateToDay(raw.Date),
		Window:      domain.InsightWindowDay,
		Impressions: raw.Impressions,
		Clicks:      raw.Clicks,
		Spend:       raw.Spend,
	}

	insight.CTR, insight.CPC, insight.CPM = s.deriveRatios(connection, raw)

	rawActions := domain.Metadata{}
	for _, action := range raw.Actions {
		rawActions[action.Type] = action.Value

		// Provedores reportam ações atribuídas com valores fracionários;
		// arredondar evita perder contagem por truncamento.
		value := int64(math.Round(action.Value))

		switch actionFieldMap[action.Type] {
		case "likes":
			insight.Likes += value
		case "comments":
			insight.Comments += value
		case "shares":
			insight.Shares += value
		case "saves":
			insight.Saves += value
		case "video_views":
			insight.VideoViews += value
		}
	}

	if len(rawActions) > 0 {
		insight.RawActions = rawActions
	}

	return insight
}

// deriveRatios recalcula CTR, CPC e CPM a partir dos contadores crus. Os
// valores reportados pelo provedor servem só de verificação cruzada: uma
// divergência acima de 10x gera alerta, mas o valor local prevalece.
func (s *Service) deriveRatios(connection *domain.Connection, raw provider.RawInsight) (ctr, cpc, cpm float64) {
	if raw.Impressions > 0 {
		ctr = utils.RoundWithTwoDecimalPlace(float64(raw.Clicks) / float64(raw.Impressions) * 100)
		cpm = utils.RoundWithTwoDecimalPlace(raw.Spend / float64(raw.Impressions) * 1000)
	}
	if raw.Clicks > 0 {
		cpc = utils.RoundWithTwoDecimalPlace(raw.Spend / float64(raw.Clicks))
	}

	checks := []struct {
		name     string
		local    float64
		reported float64
	}{
		{"ctr", ctr, raw.CTR},
		{"cpc", cpc, raw.CPC},
		{"cpm", cpm, raw.CPM},
	}

	for _, check := range checks {
		if !divergent(check.local, check.reported) {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"account_id":  connection.AccountID,
			"provider":    string(connection.Provider),
			"external_id": raw.EntityExternalID,
			"date":        raw.Date.Format(time.DateOnly),
			"metric":      check.name,
			"local":       check.local,
			"reported":    check.reported,
		}).Warn("Métrica derivada diverge mais de 10x da reportada pelo provedor")
	}

	return ctr, cpc, cpm
}

func divergent(local, reported float64) bool {
	if local <= 0 || reported <= 0 {
		return false
	}

	ratio := local / reported
	return ratio > 10 || ratio < 0.1
}
