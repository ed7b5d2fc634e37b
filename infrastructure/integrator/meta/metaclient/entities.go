package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// ListAdAccounts lista as contas de anúncios acessíveis pelo token.
func (c *MetaClient) ListAdAccounts(ctx context.Context, creds domain.Credentials) ([]provider.RemoteAdAccount, []provider.ItemError, error) {
	params := url.Values{}
	params.Add("fields", "id,account_id,name,currency,timezone_name,account_status")

	items, err := c.listPages(ctx, "me/adaccounts", params, creds)
	if err != nil {
		return nil, nil, err
	}

	accounts := make([]provider.RemoteAdAccount, 0, len(items))
	itemErrors := make([]provider.ItemError, 0)

	for _, item := range items {
		var raw metadomain.AdAccount
		if err := json.Unmarshal(item, &raw); err != nil {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("conta de anúncios malformada: %w", err)})
			continue
		}

		if raw.AccountID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("conta de anúncios sem account_id")})
			continue
		}

		accounts = append(accounts, provider.RemoteAdAccount{
			ExternalID: raw.AccountID,
			Name:       raw.Name,
			Currency:   raw.Currency,
			Timezone:   raw.TimezoneName,
			Status:     normalizeAccountStatus(raw.AccountStatus),
		})
	}

	return accounts, itemErrors, nil
}

// account_status do Meta: 1=ACTIVE, 2=DISABLED, 3=UNSETTLED, 101=CLOSED
func normalizeAccountStatus(status int) domain.EntityStatus {
	switch status {
	case 1:
		return domain.EntityStatusActive
	case 2, 3:
		return domain.EntityStatusPaused
	case 101:
		return domain.EntityStatusArchived
	default:
		return domain.EntityStatusUnknown
	}
}

// ListCampaigns lista as campanhas de uma conta de anúncios.
func (c *MetaClient) ListCampaigns(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteCampaign, []provider.ItemError, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,objective,daily_budget")

	items, err := c.listPages(ctx, fmt.Sprintf("act_%s/campaigns", accountExternalID), params, creds)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]provider.RemoteCampaign, 0, len(items))
	itemErrors := make([]provider.ItemError, 0)

	for _, item := range items {
		var raw metadomain.Campaign
		if err := json.Unmarshal(item, &raw); err != nil {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("campanha malformada: %w", err)})
			continue
		}

		if raw.ID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("campanha sem id")})
			continue
		}

		campaigns = append(campaigns, provider.RemoteCampaign{
			ExternalID:  raw.ID,
			Name:        raw.Name,
			Status:      domain.NormalizeEntityStatus(raw.Status),
			Objective:   raw.Objective,
			DailyBudget: parseBudgetCents(raw.DailyBudget),
			Raw:         rawMap(item),
		})
	}

	return campaigns, itemErrors, nil
}

// ListAdGroups lista os conjuntos de anúncios (adsets) de uma conta.
func (c *MetaClient) ListAdGroups(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteAdGroup, []provider.ItemError, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,campaign_id,daily_budget,targeting")

	items, err := c.listPages(ctx, fmt.Sprintf("act_%s/adsets", accountExternalID), params, creds)
	if err != nil {
		return nil, nil, err
	}

	adGroups := make([]provider.RemoteAdGroup, 0, len(items))
	itemErrors := make([]provider.ItemError, 0)

	for _, item := range items {
		var raw metadomain.AdSet
		if err := json.Unmarshal(item, &raw); err != nil {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("adset malformado: %w", err)})
			continue
		}

		if raw.ID == "" || raw.CampaignID == "" {
			itemErrors = append(itemErrors, provider.ItemError{ExternalID: raw.ID, Err: fmt.Errorf("adset sem id ou sem campanha")})
			continue
		}

		adGroups = append(adGroups, provider.RemoteAdGroup{
			ExternalID:         raw.ID,
			CampaignExternalID: raw.CampaignID,
			Name:               raw.Name,
			Status:             domain.NormalizeEntityStatus(raw.Status),
			DailyBudget:        parseBudgetCents(raw.DailyBudget),
			Targeting:          raw.Targeting,
			Raw:                rawMap(item),
		})
	}

	return adGroups, itemErrors, nil
}

// ListAds lista os anúncios de uma conta.
func (c *MetaClient) ListAds(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteAd, []provider.ItemError, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,adset_id,creative")

	items, err := c.listPages(ctx, fmt.Sprintf("act_%s/ads", accountExternalID), params, creds)
	if err != nil {
		return nil, nil, err
	}

	ads := make([]provider.RemoteAd, 0, len(items))
	itemErrors := make([]provider.ItemError, 0)

	for _, item := range items {
		var raw metadomain.Ad
		if err := json.Unmarshal(item, &raw); err != nil {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("anúncio malformado: %w", err)})
			continue
		}

		if raw.ID == "" || raw.AdSetID == "" {
			itemErrors = append(itemErrors, provider.ItemError{ExternalID: raw.ID, Err: fmt.Errorf("anúncio sem id ou sem adset")})
			continue
		}

		ads = append(ads, provider.RemoteAd{
			ExternalID:        raw.ID,
			AdGroupExternalID: raw.AdSetID,
			Name:              raw.Name,
			Status:            domain.NormalizeEntityStatus(raw.Status),
			Creative:          raw.Creative,
			Raw:               rawMap(item),
		})
	}

	return ads, itemErrors, nil
}

// parseBudgetCents converte o orçamento reportado em centavos (string)
// para unidades da moeda da conta.
func parseBudgetCents(value string) *float64 {
	if value == "" {
		return nil
	}

	cents, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	budget := cents / 100
	return &budget
}

func rawMap(item json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(item, &m); err != nil {
		return nil
	}
	return m
}
