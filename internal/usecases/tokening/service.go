package tokening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// RefreshThreshold é a antecedência com que um token é renovado antes da
// expiração informada pelo provedor.
const RefreshThreshold = 7 * 24 * time.Hour

// TokenManager centraliza a renovação de credenciais. Nenhum outro
// componente troca tokens com os provedores.
type TokenManager interface {
	EnsureValidToken(ctx context.Context, connection *domain.Connection) (domain.Credentials, error)
	ForceRefresh(ctx context.Context, connection *domain.Connection) (domain.Credentials, error)
}

type Service struct {
	registry       *provider.Registry
	connectionRepo repository.ConnectionRepository

	// Serializa renovações concorrentes por conexão para que duas
	// execuções simultâneas não troquem o mesmo token duas vezes.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(registry *provider.Registry, connectionRepo repository.ConnectionRepository) *Service {
	return &Service{
		registry:       registry,
		connectionRepo: connectionRepo,
		locks:          make(map[string]*sync.Mutex),
	}
}

// EnsureValidToken devolve credenciais válidas para a conexão, renovando
// antecipadamente quando o token expira dentro do limiar. Falha de
// renovação por motivo não relacionado a auth devolve as credenciais
// vigentes; o sync decide se consegue seguir com elas.
func (s *Service) EnsureValidToken(ctx context.Context, connection *domain.Connection) (domain.Credentials, error) {
	if connection.Status != domain.ConnectionStatusActive {
		return domain.Credentials{}, fmt.Errorf("conexão %s não está ativa (status: %s)", connection.ID, connection.Status)
	}

	if !connection.Credentials.ExpiresWithin(RefreshThreshold) {
		return connection.Credentials, nil
	}

	creds, err := s.refresh(ctx, connection)
	if err != nil {
		if provider.IsAuth(err) {
			return domain.Credentials{}, err
		}

		logrus.WithFields(logrus.Fields{
			"connection_id": connection.ID,
			"provider":      string(connection.Provider),
			"error":         err.Error(),
		}).Warn("Falha não-auth ao renovar token, seguindo com as credenciais vigentes")

		return connection.Credentials, nil
	}

	return creds, nil
}

// ForceRefresh renova o token imediatamente, ignorando o limiar. Usado
// pelo orquestrador quando o provedor rejeita o token no meio de uma
// execução.
func (s *Service) ForceRefresh(ctx context.Context, connection *domain.Connection) (domain.Credentials, error) {
	return s.refresh(ctx, connection)
}

func (s *Service) refresh(ctx context.Context, connection *domain.Connection) (domain.Credentials, error) {
	lock := s.connectionLock(connection.ID)
	lock.Lock()
	defer lock.Unlock()

	// Outra goroutine pode ter renovado enquanto aguardávamos o lock
	current, err := s.connectionRepo.GetByID(connection.ID)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("erro ao recarregar a conexão: %w", err)
	}
	if current == nil {
		return domain.Credentials{}, fmt.Errorf("conexão %s não encontrada", connection.ID)
	}

	if current.Credentials.AccessToken != connection.Credentials.AccessToken && !current.Credentials.ExpiresWithin(RefreshThreshold) {
		connection.Credentials = current.Credentials
		return current.Credentials, nil
	}

	client, err := s.registry.Get(connection.Provider)
	if err != nil {
		return domain.Credentials{}, err
	}

	newCreds, err := client.RefreshCredentials(ctx, current.Credentials)
	if err != nil {
		if provider.IsAuth(err) {
			logrus.WithFields(logrus.Fields{
				"connection_id": connection.ID,
				"provider":      string(connection.Provider),
			}).Error("Renovação de token rejeitada pelo provedor, marcando conexão como expirada")

			if updateErr := s.connectionRepo.UpdateStatus(connection.ID, domain.ConnectionStatusExpired); updateErr != nil {
				logrus.Errorf("Erro ao marcar a conexão %s como expirada: %v", connection.ID, updateErr)
			}
			connection.Status = domain.ConnectionStatusExpired
		}
		return domain.Credentials{}, err
	}

	if err := s.connectionRepo.UpdateCredentials(connection.ID, *newCreds); err != nil {
		return domain.Credentials{}, fmt.Errorf("erro ao persistir as novas credenciais: %w", err)
	}

	connection.Credentials = *newCreds

	logrus.WithFields(logrus.Fields{
		"connection_id": connection.ID,
		"provider":      string(connection.Provider),
		"expires_at":    newCreds.ExpiresAt.Format(time.RFC3339),
	}).Info("Token renovado com sucesso")

	return *newCreds, nil
}

func (s *Service) connectionLock(connectionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[connectionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[connectionID] = lock
	}
	return lock
}
