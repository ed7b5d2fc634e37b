package googleclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	googledomain "github.com/vfg2006/adsync-api/infrastructure/integrator/google/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

const insightMetrics = "metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.ctr, metrics.average_cpc, metrics.average_cpm, metrics.video_views, metrics.engagements"

// FetchInsights busca as métricas diárias das entidades informadas em
// uma única consulta GAQL segmentada por data.
func (c *GoogleClient) FetchInsights(
	ctx context.Context,
	creds domain.Credentials,
	accountExternalID string,
	entityType domain.EntityType,
	entityExternalIDs []string,
	start, end time.Time,
) ([]provider.RawInsight, []provider.ItemError, error) {
	if len(entityExternalIDs) == 0 {
		return nil, nil, nil
	}

	query, err := insightQuery(entityType, entityExternalIDs, start, end)
	if err != nil {
		return nil, nil, err
	}

	rows, err := c.searchStream(ctx, creds, accountExternalID, query)
	if err != nil {
		return nil, nil, err
	}

	insights := make([]provider.RawInsight, 0, len(rows))
	itemErrors := make([]provider.ItemError, 0)

	for _, row := range rows {
		if row.Metrics == nil || row.Segments == nil || row.Segments.Date == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("linha de métricas sem metrics ou segments.date")})
			continue
		}

		externalID := rowEntityID(entityType, row, accountExternalID)
		if externalID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("linha de métricas sem o id da entidade")})
			continue
		}

		date, err := utils.ParseDate(row.Segments.Date)
		if err != nil {
			itemErrors = append(itemErrors, provider.ItemError{ExternalID: externalID, Err: fmt.Errorf("segments.date inválido %q", row.Segments.Date)})
			continue
		}

		insights = append(insights, provider.RawInsight{
			EntityExternalID: externalID,
			Date:             *date,
			Impressions:      parseCount(row.Metrics.Impressions),
			Clicks:           parseCount(row.Metrics.Clicks),
			Spend:            parseMicros(row.Metrics.CostMicros),
			// O Google reporta CTR como fração e CPC/CPM em micros;
			// normalizamos para percentual e unidades da moeda.
			CTR:     row.Metrics.CTR * 100,
			CPC:     row.Metrics.AverageCPC / 1e6,
			CPM:     row.Metrics.AverageCPM / 1e6,
			Actions: rowActions(row.Metrics),
			Raw:     searchRowMap(row),
		})
	}

	return insights, itemErrors, nil
}

func insightQuery(entityType domain.EntityType, entityExternalIDs []string, start, end time.Time) (string, error) {
	dateFilter := fmt.Sprintf("segments.date BETWEEN '%s' AND '%s'", start.Format(time.DateOnly), end.Format(time.DateOnly))
	idList := strings.Join(entityExternalIDs, ", ")

	switch entityType {
	case domain.EntityTypeAdAccount:
		return fmt.Sprintf("SELECT customer.id, segments.date, %s FROM customer WHERE %s", insightMetrics, dateFilter), nil
	case domain.EntityTypeCampaign:
		return fmt.Sprintf("SELECT campaign.id, segments.date, %s FROM campaign WHERE campaign.id IN (%s) AND %s", insightMetrics, idList, dateFilter), nil
	case domain.EntityTypeAdGroup:
		return fmt.Sprintf("SELECT ad_group.id, segments.date, %s FROM ad_group WHERE ad_group.id IN (%s) AND %s", insightMetrics, idList, dateFilter), nil
	case domain.EntityTypeAd:
		return fmt.Sprintf("SELECT ad_group_ad.ad.id, segments.date, %s FROM ad_group_ad WHERE ad_group_ad.ad.id IN (%s) AND %s", insightMetrics, idList, dateFilter), nil
	}

	return "", provider.NewFatalError(domain.ProviderGoogle, 0, 0, fmt.Sprintf("tipo de entidade não suportado para insights: %s", entityType))
}

func rowEntityID(entityType domain.EntityType, row googledomain.SearchRow, accountExternalID string) string {
	switch entityType {
	case domain.EntityTypeAdAccount:
		if row.Customer != nil && row.Customer.ID != "" {
			return row.Customer.ID
		}
		return accountExternalID
	case domain.EntityTypeCampaign:
		if row.Campaign != nil {
			return row.Campaign.ID
		}
	case domain.EntityTypeAdGroup:
		if row.AdGroup != nil {
			return row.AdGroup.ID
		}
	case domain.EntityTypeAd:
		if row.AdGroupAd != nil {
			return row.AdGroupAd.Ad.ID
		}
	}
	return ""
}

func rowActions(metrics *googledomain.Metrics) []provider.Action {
	actions := make([]provider.Action, 0, 2)

	if views := parseCount(metrics.VideoViews); views > 0 {
		actions = append(actions, provider.Action{Type: "video_view", Value: float64(views)})
	}
	if engagements := parseCount(metrics.Engagements); engagements > 0 {
		actions = append(actions, provider.Action{Type: "engagement", Value: float64(engagements)})
	}

	if len(actions) == 0 {
		return nil
	}
	return actions
}
