package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/google/googleclient"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/provider"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/api"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/scheduler"
	"github.com/vfg2006/adsync-api/internal/usecases/aggregating"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/internal/usecases/tokening"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	connectionRepo := repository.NewConnectionRepository(pgConn)
	adAccountRepo := repository.NewAdAccountRepository(pgConn)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	adGroupRepo := repository.NewAdGroupRepository(pgConn)
	adRepo := repository.NewAdRepository(pgConn)
	insightRepo := repository.NewInsightRepository(pgConn)
	changeHistoryRepo := repository.NewChangeHistoryRepository(pgConn)
	syncHistoryRepo := repository.NewSyncHistoryRepository(pgConn)

	locker := postgres.NewAdvisoryLocker(pgConn)

	metaClient := metaclient.NewClient(cfg.Meta)
	googleClient := googleclient.NewClient(cfg.Google)
	registry := provider.NewRegistry(metaClient, googleClient)

	tokenManager := tokening.NewService(registry, connectionRepo)

	reconciler := reconciling.NewService(
		adAccountRepo,
		campaignRepo,
		adGroupRepo,
		adRepo,
		changeHistoryRepo,
	)

	aggregator := aggregating.NewService(insightRepo)

	orchestrator := syncing.NewService(
		cfg.ProviderSync,
		registry,
		tokenManager,
		reconciler,
		aggregator,
		connectionRepo,
		syncHistoryRepo,
		locker,
	)

	providerSyncService := scheduler.NewProviderSyncService(
		cfg.ProviderSync,
		connectionRepo,
		orchestrator,
	)

	retentionService := scheduler.NewRetentionService(
		cfg.Retention,
		changeHistoryRepo,
		syncHistoryRepo,
	)

	// Inicia os agendadores em background
	if err := providerSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de provedores")
	} else {
		logrus.Info("Agendador de sincronização de provedores iniciado com sucesso")
	}

	if err := retentionService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de limpeza de históricos")
	} else {
		logrus.Info("Agendador de limpeza de históricos iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		providerSyncService,
		connectionRepo,
		syncHistoryRepo,
		changeHistoryRepo,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
