package reconciling

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// Outcome resume o resultado de uma passada de reconciliação.
// Entidades ausentes no provedor nunca são removidas localmente; remoção
// explícita é atribuição do fluxo de desconexão, não do sync.
type Outcome struct {
	Created   int
	Updated   int
	Unchanged int
	Rejected  []domain.SyncError
}

func (o Outcome) Total() int {
	return o.Created + o.Updated + o.Unchanged
}

// Reconciler compara os snapshots do provedor com o estado persistido,
// aplica criações e atualizações e registra os eventos de mudança.
type Reconciler interface {
	ReconcileAdAccounts(connection *domain.Connection, remotes []provider.RemoteAdAccount) (Outcome, map[string]string, error)
	ReconcileCampaigns(connection *domain.Connection, adAccountID string, remotes []provider.RemoteCampaign) (Outcome, map[string]string, error)
	ReconcileAdGroups(connection *domain.Connection, campaignIDs map[string]string, remotes []provider.RemoteAdGroup) (Outcome, map[string]string, error)
	ReconcileAds(connection *domain.Connection, adGroupIDs map[string]string, remotes []provider.RemoteAd) (Outcome, map[string]string, error)
}

type Service struct {
	adAccountRepo     repository.AdAccountRepository
	campaignRepo      repository.CampaignRepository
	adGroupRepo       repository.AdGroupRepository
	adRepo            repository.AdRepository
	changeHistoryRepo repository.ChangeHistoryRepository

	now func() time.Time
}

func NewService(
	adAccountRepo repository.AdAccountRepository,
	campaignRepo repository.CampaignRepository,
	adGroupRepo repository.AdGroupRepository,
	adRepo repository.AdRepository,
	changeHistoryRepo repository.ChangeHistoryRepository,
) *Service {
	return &Service{
		adAccountRepo:     adAccountRepo,
		campaignRepo:      campaignRepo,
		adGroupRepo:       adGroupRepo,
		adRepo:            adRepo,
		changeHistoryRepo: changeHistoryRepo,
		now:               time.Now,
	}
}

// ReconcileAdAccounts sincroniza as contas de anúncios da conexão e
// devolve o mapa external_id -> id local para os níveis seguintes.
func (s *Service) ReconcileAdAccounts(connection *domain.Connection, remotes []provider.RemoteAdAccount) (Outcome, map[string]string, error) {
	existing, err := s.adAccountRepo.ListByAccountAndProvider(connection.AccountID, connection.Provider)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("erro ao listar as contas de anúncios: %w", err)
	}

	existingByExternalID := make(map[string]*domain.AdAccount, len(existing))
	localIDs := make(map[string]string, len(existing))
	for _, adAccount := range existing {
		existingByExternalID[adAccount.ExternalID] = adAccount
		localIDs[adAccount.ExternalID] = adAccount.ID
	}

	outcome := Outcome{}
	events := make([]domain.ChangeEvent, 0)

	for _, remote := range remotes {
		current, exists := existingByExternalID[remote.ExternalID]
		if !exists {
			id, err := utils.GenerateID()
			if err != nil {
				return outcome, localIDs, err
			}

			adAccount := &domain.AdAccount{
				ID:         id,
				AccountID:  connection.AccountID,
				Provider:   connection.Provider,
				ExternalID: remote.ExternalID,
				Name:       remote.Name,
				Currency:   remote.Currency,
				Timezone:   remote.Timezone,
				Status:     remote.Status,
			}

			if err := s.adAccountRepo.Insert(adAccount); err != nil {
				return outcome, localIDs, fmt.Errorf("erro ao inserir a conta de anúncios %s: %w", remote.ExternalID, err)
			}

			localIDs[remote.ExternalID] = id
			outcome.Created++
			continue
		}

		oldSnapshot := map[string]any{
			"name":     current.Name,
			"status":   string(current.Status),
			"currency": current.Currency,
			"timezone": current.Timezone,
		}
		newSnapshot := map[string]any{
			"name":     remote.Name,
			"status":   string(remote.Status),
			"currency": remote.Currency,
			"timezone": remote.Timezone,
		}

		changes := DetectChanges(domain.EntityTypeAdAccount, oldSnapshot, newSnapshot)
		if len(changes) == 0 {
			outcome.Unchanged++
			continue
		}

		current.Name = remote.Name
		current.Currency = remote.Currency
		current.Timezone = remote.Timezone
		current.Status = remote.Status

		if err := s.adAccountRepo.Update(current); err != nil {
			return outcome, localIDs, fmt.Errorf("erro ao atualizar a conta de anúncios %s: %w", remote.ExternalID, err)
		}

		outcome.Updated++
		events = append(events, s.updatedEvents(connection, domain.EntityTypeAdAccount, current.ID, remote.ExternalID, changes)...)
	}

	if err := s.changeHistoryRepo.Append(events); err != nil {
		return outcome, localIDs, fmt.Errorf("erro ao gravar o histórico de mudanças: %w", err)
	}

	return outcome, localIDs, nil
}

// ReconcileCampaigns sincroniza as campanhas de uma conta de anúncios já
// reconciliada.
func (s *Service) ReconcileCampaigns(connection *domain.Connection, adAccountID string, remotes []provider.RemoteCampaign) (Outcome, map[string]string, error) {
	existing, err := s.campaignRepo.ListByAccountAndProvider(connection.AccountID, connection.Provider)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("erro ao listar as campanhas: %w", err)
	}

	existingByExternalID := make(map[string]*domain.Campaign, len(existing))
	localIDs := make(map[string]string, len(existing))
	for _, campaign := range existing {
		existingByExternalID[campaign.ExternalID] = campaign
		localIDs[campaign.ExternalID] = campaign.ID
	}

	outcome := Outcome{}
	events := make([]domain.ChangeEvent, 0)

	for _, remote := range remotes {
		metadata := campaignMetadata(remote)

		current, exists := existingByExternalID[remote.ExternalID]
		if !exists {
			id, err := utils.GenerateID()
			if err != nil {
				return outcome, localIDs, err
			}

			campaign := &domain.Campaign{
				ID:          id,
				AccountID:   connection.AccountID,
				Provider:    connection.Provider,
				ExternalID:  remote.ExternalID,
				AdAccountID: adAccountID,
				Name:        remote.Name,
				Status:      remote.Status,
				Metadata:    metadata,
			}

			if err := s.campaignRepo.Insert(campaign); err != nil {
				return outcome, localIDs, fmt.Errorf("erro ao inserir a campanha %s: %w", remote.ExternalID, err)
			}

			localIDs[remote.ExternalID] = id
			outcome.Created++
			continue
		}

		// Campanha já conhecida em outra conta de anúncios do mesmo
		// tenant não muda de pai; o vínculo original prevalece.
		oldSnapshot := map[string]any{
			"name":     current.Name,
			"status":   string(current.Status),
			"metadata": map[string]any(current.Metadata),
		}
		newSnapshot := map[string]any{
			"name":     remote.Name,
			"status":   string(remote.Status),
			"metadata": map[string]any(metadata),
		}

		changes := DetectChanges(domain.EntityTypeCampaign, oldSnapshot, newSnapshot)
		if len(changes) == 0 {
			outcome.Unchanged++
			continue
		}

		current.Name = remote.Name
		current.Status = remote.Status
		current.Metadata = mergeMetadata(current.Metadata, metadata)

		if err := s.campaignRepo.Update(current); err != nil {
			return outcome, localIDs, fmt.Errorf("erro ao atualizar a campanha %s: %w", remote.ExternalID, err)
		}

		outcome.Updated++
		events = append(events, s.updatedEvents(connection, domain.EntityTypeCampaign, current.ID, remote.ExternalID, changes)...)
	}

	if err := s.changeHistoryRepo.Append(events); err != nil {
		return outcome, localIDs, fmt.Errorf("erro ao gravar o histórico de mudanças: %w", err)
	}

	return outcome, localIDs, nil
}

// ReconcileAdGroups sincroniza os grupos de anúncios. Grupos cujo pai não
// pertence ao tenant da conexão são rejeitados, nunca gravados.
func (s *Service) ReconcileAdGroups(connection *domain.Connection, campaignIDs map[string]string, remotes []provider.RemoteAdGroup) (Outcome, map[string]string, error) {
	existing, err := s.adGroupRepo.ListByAccountAndProvider(connection.AccountID, connection.Provider)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("erro ao listar os grupos de anúncios: %w", err)
	}

	existingByExternalID := make(map[string]*domain.AdGroup, len(existing))
	localIDs := make(map[string]string, len(existing))
	for _, adGroup := range existing {
		existingByExternalID[adGroup.ExternalID] = adGroup
		localIDs[adGroup.ExternalID] = adGroup.ID
	}

	outcome := Outcome{}
	events := make([]domain.ChangeEvent, 0)

	for _, remote := range remotes {
		metadata := adGroupMetadata(remote)

		current, exists := existingByExternalID[remote.ExternalID]
		if !exists {
			campaignID, found := campaignIDs[remote.CampaignExternalID]
			if !found {
				outcome.Rejected = append(outcome.Rejected, rejection(domain.EntityTypeAdGroup, remote.ExternalID, remote.CampaignExternalID))
				s.logRejection(connection, domain.EntityTypeAdGroup, remote.ExternalID, remote.CampaignExternalID)
				continue
			}

			id, err := utils.GenerateID()
			if err != nil {
				return outcome, localIDs, err
			}

			adGroup := &domain.AdGroup{
				ID:         id,
				AccountID:  connection.AccountID,
				Provider:   connection.Provider,
				ExternalID: remote.ExternalID,
				CampaignID: campaignID,
				Name:       remote.Name,
				Status:     remote.Status,
				Metadata:   metadata,
			}

			if err := s.adGroupRepo.Insert(adGroup); err != nil {
				return outcome, localIDs, fmt.Errorf("erro ao inserir o grupo de anúncios %s: %w", remote.ExternalID, err)
			}

			localIDs[remote.ExternalID] = id
			outcome.Created++
			continue
		}

		oldSnapshot := map[string]any{
			"name":     current.Name,
			"status":   string(current.Status),
			"metadata": map[string]any(current.Metadata),
		}
		newSnapshot := map[string]any{
			"name":     remote.Name,
			"status":   string(remote.Status),
			"metadata": map[string]any(metadata),
		}

		changes := DetectChanges(domain.EntityTypeAdGroup, oldSnapshot, newSnapshot)
		if len(changes) == 0 {
			outcome.Unchanged++
			continue
		}

		current.Name = remote.Name
		current.Status = remote.Status
		current.Metadata = mergeMetadata(current.Metadata, metadata)

		if err := s.adGroupRepo.Update(current); err != nil {
			return outcome, localIDs, fmt.Errorf("erro ao atualizar o grupo de anúncios %s: %w", remote.ExternalID, err)
		}

		outcome.Updated++
		events = append(events, s.updatedEvents(connection, domain.EntityTypeAdGroup, current.ID, remote.ExternalID, changes)...)
	}

	if err := s.changeHistoryRepo.Append(events); err != nil {
		return outcome, localIDs, fmt.Errorf("erro ao gravar o histórico de mudanças: %w", err)
	}

	return outcome, localIDs, nil
}

// ReconcileAds sincroniza os anúncios.
func (s *Service) ReconcileAds(connection *domain.Connection, adGroupIDs map[string]string, remotes []provider.RemoteAd) (Outcome, map[string]string, error) {
	existing, err := s.adRepo.ListByAccountAndProvider(connection.AccountID, connection.Provider)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("erro ao listar os anúncios: %w", err)
	}

	existingByExternalID := make(map[string]*domain.Ad, len(existing))
	localIDs := make(map[string]string, len(existing))
	for _, ad := range existing {
		existingByExternalID[ad.ExternalID] = ad
		localIDs[ad.ExternalID] = ad.ID
	}

	outcome := Outcome{}
	events := make([]domain.ChangeEvent, 0)

	for _, remote := range remotes {
		current, exists := existingByExternalID[remote.ExternalID]
		if !exists {
			adGroupID, found := adGroupIDs[remote.AdGroupExternalID]
			if !found {
				outcome.Rejected = append(outcome.Rejected, rejection(domain.EntityTypeAd, remote.ExternalID, remote.AdGroupExternalID))
				s.logRejection(connection, domain.EntityTypeAd, remote.ExternalID, remote.AdGroupExternalID)
				continue
			}

			id, err := utils.GenerateID()
			if err != nil {
				return outcome, localIDs, err
			}

			ad := &domain.Ad{
				ID:         id,
				AccountID:  connection.AccountID,
				Provider:   connection.Provider,
				ExternalID: remote.ExternalID,
				AdGroupID:  adGroupID,
				Name:       remote.Name,
				Status:     remote.Status,
				Creative:   remote.Creative,
			}

			if err := s.adRepo.Insert(ad); err != nil {
				return outcome, localIDs, fmt.Errorf("erro ao inserir o anúncio %s: %w", remote.ExternalID, err)
			}

			localIDs[remote.ExternalID] = id
			outcome.Created++
			continue
		}

		oldSnapshot := map[string]any{
			"name":     current.Name,
			"status":   string(current.Status),
			"creative": map[string]any(current.Creative),
		}
		newSnapshot := map[string]any{
			"name":     remote.Name,
			"status":   string(remote.Status),
			"creative": remote.Creative,
		}

		changes := DetectChanges(domain.EntityTypeAd, oldSnapshot, newSnapshot)
		if len(changes) == 0 {
			outcome.Unchanged++
			continue
		}

		current.Name = remote.Name
		current.Status = remote.Status
		current.Creative = remote.Creative

		if err := s.adRepo.Update(current); err != nil {
			return outcome, localIDs, fmt.Errorf("erro ao atualizar o anúncio %s: %w", remote.ExternalID, err)
		}

		outcome.Updated++
		events = append(events, s.updatedEvents(connection, domain.EntityTypeAd, current.ID, remote.ExternalID, changes)...)
	}

	if err := s.changeHistoryRepo.Append(events); err != nil {
		return outcome, localIDs, fmt.Errorf("erro ao gravar o histórico de mudanças: %w", err)
	}

	return outcome, localIDs, nil
}

func (s *Service) updatedEvents(connection *domain.Connection, entityType domain.EntityType, entityID, externalID string, changes []FieldChange) []domain.ChangeEvent {
	events := make([]domain.ChangeEvent, 0, len(changes))
	detectedAt := s.now()

	for _, change := range changes {
		events = append(events, domain.ChangeEvent{
			AccountID:  connection.AccountID,
			EntityType: entityType,
			EntityID:   entityID,
			Provider:   connection.Provider,
			ExternalID: externalID,
			ChangeType: domain.ChangeTypeUpdated,
			FieldName:  change.Field,
			OldValue:   change.OldValue,
			NewValue:   change.NewValue,
			DetectedAt: detectedAt,
		})
	}

	return events
}

func rejection(entityType domain.EntityType, externalID, parentExternalID string) domain.SyncError {
	return domain.SyncError{
		Step:       fmt.Sprintf("reconcile_%s", entityType),
		ExternalID: externalID,
		Category:   "reconciliation",
		Message:    fmt.Sprintf("entidade pai %s não pertence à conta da conexão", parentExternalID),
	}
}

func (s *Service) logRejection(connection *domain.Connection, entityType domain.EntityType, externalID, parentExternalID string) {
	logrus.WithFields(logrus.Fields{
		"account_id":  connection.AccountID,
		"provider":    string(connection.Provider),
		"entity_type": string(entityType),
		"external_id": externalID,
		"parent":      parentExternalID,
	}).Warn("Entidade rejeitada na reconciliação: pai desconhecido para a conta")
}

func campaignMetadata(remote provider.RemoteCampaign) domain.Metadata {
	metadata := domain.Metadata{}
	if remote.Objective != "" {
		metadata["objective"] = remote.Objective
	}
	if remote.DailyBudget != nil {
		metadata["daily_budget"] = *remote.DailyBudget
	}
	return metadata
}

func adGroupMetadata(remote provider.RemoteAdGroup) domain.Metadata {
	metadata := domain.Metadata{}
	if remote.DailyBudget != nil {
		metadata["daily_budget"] = *remote.DailyBudget
	}
	if remote.Targeting != nil {
		metadata["targeting"] = remote.Targeting
	}
	return metadata
}

// mergeMetadata aplica o snapshot novo preservando chaves locais que o
// provedor não reporta, como o resumo de insights mantido pelo agregador.
func mergeMetadata(current, incoming domain.Metadata) domain.Metadata {
	merged := domain.Metadata{}

	if insights, ok := current["insights"]; ok {
		merged["insights"] = insights
	}

	for key, value := range incoming {
		merged[key] = value
	}

	return merged
}
