package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// FetchInsights busca os insights diários de cada entidade no intervalo
// informado, uma chamada por entidade. Erros de auth e rate limit abortam
// a busca inteira; erros fatais ou transitórios de uma entidade viram
// erro por item e as demais seguem. No Graph API cada entidade é
// endereçável pelo próprio ID, então accountExternalID não é usado.
func (c *MetaClient) FetchInsights(
	ctx context.Context,
	creds domain.Credentials,
	_ string,
	entityType domain.EntityType,
	entityExternalIDs []string,
	start, end time.Time,
) ([]provider.RawInsight, []provider.ItemError, error) {
	insights := make([]provider.RawInsight, 0, len(entityExternalIDs))
	itemErrors := make([]provider.ItemError, 0)

	for _, externalID := range entityExternalIDs {
		rows, err := c.fetchEntityInsights(ctx, creds, externalID, start, end)
		if err != nil {
			if provider.IsAuth(err) || provider.IsRateLimit(err) {
				return insights, itemErrors, err
			}

			itemErrors = append(itemErrors, provider.ItemError{ExternalID: externalID, Err: err})
			continue
		}

		insights = append(insights, rows...)
	}

	return insights, itemErrors, nil
}

func (c *MetaClient) fetchEntityInsights(ctx context.Context, creds domain.Credentials, externalID string, start, end time.Time) ([]provider.RawInsight, error) {
	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`, start.Format(time.DateOnly), end.Format(time.DateOnly))

	params := url.Values{}
	params.Add("fields", "impressions,clicks,spend,ctr,cpc,cpm,actions")
	params.Add("time_range", timeRange)
	params.Add("time_increment", "1")

	items, err := c.listPages(ctx, fmt.Sprintf("%s/insights", externalID), params, creds)
	if err != nil {
		return nil, err
	}

	rows := make([]provider.RawInsight, 0, len(items))
	for _, item := range items {
		var raw metadomain.Insight
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, provider.NewFatalError(domain.ProviderMeta, 0, 0, fmt.Sprintf("insight malformado: %v", err))
		}

		date, err := utils.ParseDate(raw.DateStart)
		if err != nil {
			return nil, provider.NewFatalError(domain.ProviderMeta, 0, 0, fmt.Sprintf("insight com date_start inválido %q", raw.DateStart))
		}

		rows = append(rows, provider.RawInsight{
			EntityExternalID: externalID,
			Date:             *date,
			Impressions:      parseMetricInt(raw.Impressions),
			Clicks:           parseMetricInt(raw.Clicks),
			Spend:            parseMetricFloat(raw.Spend),
			CTR:              parseMetricFloat(raw.CTR),
			CPC:              parseMetricFloat(raw.CPC),
			CPM:              parseMetricFloat(raw.CPM),
			Actions:          parseActions(raw.Actions),
			Raw:              rawMap(item),
		})
	}

	return rows, nil
}

func parseActions(actions []metadomain.InsightAction) []provider.Action {
	if len(actions) == 0 {
		return nil
	}

	parsed := make([]provider.Action, 0, len(actions))
	for _, action := range actions {
		parsed = append(parsed, provider.Action{
			Type:  action.ActionType,
			Value: parseMetricFloat(action.Value),
		})
	}
	return parsed
}

// O Graph API serializa métricas numéricas como strings; campos ausentes
// valem zero.
func parseMetricInt(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseMetricFloat(value string) float64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
