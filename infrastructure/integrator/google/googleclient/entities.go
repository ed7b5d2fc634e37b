package googleclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// ListAdAccounts lista os clientes acessíveis pelo refresh token e busca
// os dados de cada um. Clientes que falham individualmente viram erro
// por item; os demais seguem.
func (c *GoogleClient) ListAdAccounts(ctx context.Context, creds domain.Credentials) ([]provider.RemoteAdAccount, []provider.ItemError, error) {
	customerIDs, err := c.listAccessibleCustomerIDs(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	accounts := make([]provider.RemoteAdAccount, 0, len(customerIDs))
	itemErrors := make([]provider.ItemError, 0)

	query := `SELECT customer.id, customer.descriptive_name, customer.currency_code, customer.time_zone, customer.status FROM customer`

	for _, customerID := range customerIDs {
		rows, err := c.searchStream(ctx, creds, customerID, query)
		if err != nil {
			if provider.IsAuth(err) || provider.IsRateLimit(err) {
				return accounts, itemErrors, err
			}

			itemErrors = append(itemErrors, provider.ItemError{ExternalID: customerID, Err: err})
			continue
		}

		for _, row := range rows {
			if row.Customer == nil || row.Customer.ID == "" {
				itemErrors = append(itemErrors, provider.ItemError{ExternalID: customerID, Err: fmt.Errorf("cliente sem customer.id na resposta")})
				continue
			}

			accounts = append(accounts, provider.RemoteAdAccount{
				ExternalID: row.Customer.ID,
				Name:       row.Customer.DescriptiveName,
				Currency:   row.Customer.CurrencyCode,
				Timezone:   row.Customer.TimeZone,
				Status:     domain.NormalizeEntityStatus(row.Customer.Status),
			})
		}
	}

	return accounts, itemErrors, nil
}

func (c *GoogleClient) listAccessibleCustomerIDs(ctx context.Context, creds domain.Credentials) ([]string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.endpoint("customers:listAccessibleCustomers"), creds, nil)
	if err != nil {
		return nil, err
	}

	resourceNames, err := parseAccessibleCustomers(body)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resourceNames))
	for _, resourceName := range resourceNames {
		if id := resourceNameID(resourceName); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListCampaigns lista as campanhas de um cliente com o orçamento diário.
func (c *GoogleClient) ListCampaigns(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteCampaign, []provider.ItemError, error) {
	query := `SELECT campaign.id, campaign.name, campaign.status, campaign.advertising_channel_type, campaign_budget.amount_micros FROM campaign`

	rows, err := c.searchStream(ctx, creds, accountExternalID, query)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]provider.RemoteCampaign, 0, len(rows))
	itemErrors := make([]provider.ItemError, 0)

	for _, row := range rows {
		if row.Campaign == nil || row.Campaign.ID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("campanha sem campaign.id na resposta")})
			continue
		}

		var budget *float64
		if row.CampaignBudget != nil && row.CampaignBudget.AmountMicros != "" {
			amount := parseMicros(row.CampaignBudget.AmountMicros)
			budget = &amount
		}

		campaigns = append(campaigns, provider.RemoteCampaign{
			ExternalID:  row.Campaign.ID,
			Name:        row.Campaign.Name,
			Status:      domain.NormalizeEntityStatus(row.Campaign.Status),
			Objective:   row.Campaign.AdvertisingChannelType,
			DailyBudget: budget,
			Raw:         searchRowMap(row),
		})
	}

	return campaigns, itemErrors, nil
}

// ListAdGroups lista os grupos de anúncios de um cliente.
func (c *GoogleClient) ListAdGroups(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteAdGroup, []provider.ItemError, error) {
	query := `SELECT ad_group.id, ad_group.name, ad_group.status, ad_group.campaign FROM ad_group`

	rows, err := c.searchStream(ctx, creds, accountExternalID, query)
	if err != nil {
		return nil, nil, err
	}

	adGroups := make([]provider.RemoteAdGroup, 0, len(rows))
	itemErrors := make([]provider.ItemError, 0)

	for _, row := range rows {
		if row.AdGroup == nil || row.AdGroup.ID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("grupo de anúncios sem ad_group.id na resposta")})
			continue
		}

		campaignID := resourceNameID(row.AdGroup.Campaign)
		if campaignID == "" {
			itemErrors = append(itemErrors, provider.ItemError{ExternalID: row.AdGroup.ID, Err: fmt.Errorf("grupo de anúncios sem campanha")})
			continue
		}

		adGroups = append(adGroups, provider.RemoteAdGroup{
			ExternalID:         row.AdGroup.ID,
			CampaignExternalID: campaignID,
			Name:               row.AdGroup.Name,
			Status:             domain.NormalizeEntityStatus(row.AdGroup.Status),
			Raw:                searchRowMap(row),
		})
	}

	return adGroups, itemErrors, nil
}

// ListAds lista os anúncios de um cliente.
func (c *GoogleClient) ListAds(ctx context.Context, creds domain.Credentials, accountExternalID string) ([]provider.RemoteAd, []provider.ItemError, error) {
	query := `SELECT ad_group_ad.ad.id, ad_group_ad.ad.name, ad_group_ad.status, ad_group_ad.ad_group, ad_group_ad.ad.final_urls FROM ad_group_ad`

	rows, err := c.searchStream(ctx, creds, accountExternalID, query)
	if err != nil {
		return nil, nil, err
	}

	ads := make([]provider.RemoteAd, 0, len(rows))
	itemErrors := make([]provider.ItemError, 0)

	for _, row := range rows {
		if row.AdGroupAd == nil || row.AdGroupAd.Ad.ID == "" {
			itemErrors = append(itemErrors, provider.ItemError{Err: fmt.Errorf("anúncio sem ad.id na resposta")})
			continue
		}

		adGroupID := resourceNameID(row.AdGroupAd.AdGroup)
		if adGroupID == "" {
			itemErrors = append(itemErrors, provider.ItemError{ExternalID: row.AdGroupAd.Ad.ID, Err: fmt.Errorf("anúncio sem grupo de anúncios")})
			continue
		}

		var creative domain.Metadata
		if len(row.AdGroupAd.Ad.FinalURLs) > 0 {
			creative = domain.Metadata{"final_urls": row.AdGroupAd.Ad.FinalURLs}
		}

		ads = append(ads, provider.RemoteAd{
			ExternalID:        row.AdGroupAd.Ad.ID,
			AdGroupExternalID: adGroupID,
			Name:              row.AdGroupAd.Ad.Name,
			Status:            domain.NormalizeEntityStatus(row.AdGroupAd.Status),
			Creative:          creative,
			Raw:               searchRowMap(row),
		})
	}

	return ads, itemErrors, nil
}
