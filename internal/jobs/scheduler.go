// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежемесячный «Гражданин месяца»
// и ежедневную очистку админ-сессий.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/features/admin"
	"citizen-bot/internal/features/ranking"
)

// Announcer отправляет объявления в основной чат (реализуется bot.Bot).
type Announcer interface {
	AnnounceToFloodChat(ctx context.Context, text string)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	rankingService *ranking.Service
	adminService   *admin.Service
	announcer      Announcer
}

// NewScheduler создаёт планировщик. Все окна рейтингов считаются в UTC,
// поэтому и cron работает в UTC — иначе границы месяца поплывут.
func NewScheduler(rankingService *ranking.Service, adminService *admin.Service, announcer Announcer) *Scheduler {
	return &Scheduler{
		cron:           cron.New(cron.WithLocation(time.UTC)),
		rankingService: rankingService,
		adminService:   adminService,
		announcer:      announcer,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Первое число месяца, полночь UTC — лучший участник прошедшего месяца
	s.cron.AddFunc("0 0 1 * *", func() {
		log.Info("[CRON] Обновление лучшего участника месяца")
		winner, err := s.rankingService.UpdateMonthlyTopContributor(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка обновления лучшего участника")
			return
		}
		if winner == nil {
			log.Info("[CRON] За месяц никто не заработал очков")
			return
		}
		s.announcer.AnnounceToFloodChat(ctx, fmt.Sprintf(
			"👑 Гражданин месяца — %s! Поздравляем!", winner.Display()))
	})

	// Ежедневная очистка протухших админ-сессий
	s.cron.AddFunc("0 3 * * *", func() {
		log.Debug("[CRON] Очистка админ-сессий")
		if err := s.adminService.CleanupExpired(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки сессий")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (UTC)")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
