package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
)

// RetentionService apaga periodicamente históricos antigos de mudanças e
// execuções. As entidades e os insights nunca entram na retenção.
type RetentionService struct {
	scheduler         *gocron.Scheduler
	cfg               config.Retention
	changeHistoryRepo repository.ChangeHistoryRepository
	syncHistoryRepo   repository.SyncHistoryRepository
}

func NewRetentionService(
	cfg config.Retention,
	changeHistoryRepo repository.ChangeHistoryRepository,
	syncHistoryRepo repository.SyncHistoryRepository,
) *RetentionService {
	return &RetentionService{
		scheduler:         gocron.NewScheduler(time.Local),
		cfg:               cfg,
		changeHistoryRepo: changeHistoryRepo,
		syncHistoryRepo:   syncHistoryRepo,
	}
}

// Start inicia o agendador de retenção
func (s *RetentionService) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logrus.Info("Limpeza de históricos desabilitada por configuração")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"cron":                s.cfg.CronSchedule,
		"change_history_days": s.cfg.ChangeHistoryDays,
		"sync_history_days":   s.cfg.SyncHistoryDays,
	}).Info("Iniciando agendador de limpeza de históricos")

	_, err := s.scheduler.Cron(s.cfg.CronSchedule).Do(s.cleanup)
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de históricos: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de limpeza de históricos")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *RetentionService) cleanup() {
	if s.cfg.ChangeHistoryDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.ChangeHistoryDays)

		removed, err := s.changeHistoryRepo.DeleteOlderThan(cutoff)
		if err != nil {
			logrus.WithError(err).Error("Erro ao limpar o histórico de mudanças")
		} else if removed > 0 {
			logrus.WithFields(logrus.Fields{
				"removed": removed,
				"cutoff":  cutoff.Format(time.DateOnly),
			}).Info("Histórico de mudanças antigo removido")
		}
	}

	if s.cfg.SyncHistoryDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.SyncHistoryDays)

		removed, err := s.syncHistoryRepo.DeleteOlderThan(cutoff)
		if err != nil {
			logrus.WithError(err).Error("Erro ao limpar o histórico de execuções")
		} else if removed > 0 {
			logrus.WithFields(logrus.Fields{
				"removed": removed,
				"cutoff":  cutoff.Format(time.DateOnly),
			}).Info("Histórico de execuções antigo removido")
		}
	}
}
