// Package ranking — service.go: лидерборды, ранги участника
// и ежемесячный «Гражданин месяца».
package ranking

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/common"
	"citizen-bot/internal/features/badges"
)

// Имя бейджа лучшего участника месяца в каталоге.
const monthlyTopBadgeName = "Citizen of the Month"

// Окно недельного лидерборда — скользящие 7 суток.
const weeklyWindow = 7 * 24 * time.Hour

// Store — запросы рангов (реализуется *Repository).
type Store interface {
	TopByTotalPoints(ctx context.Context, limit, offset int) ([]*Entry, error)
	TopByWindow(ctx context.Context, since time.Time, limit int) ([]*Entry, error)
	TotalRank(ctx context.Context, userID int64) (int64, error)
	WindowRank(ctx context.Context, userID int64, since time.Time) (int64, error)
}

// BadgeAwards — выдача бейджа месяца (реализуется badges.Repository).
type BadgeAwards interface {
	GetByName(ctx context.Context, name string) (*badges.Badge, error)
	RefreshAward(ctx context.Context, userID, badgeID int64) error
}

// Service считает лидерборды и ранги.
type Service struct {
	store  Store
	awards BadgeAwards
}

// NewService создаёт сервис рангов.
func NewService(store Store, awards BadgeAwards) *Service {
	return &Service{store: store, awards: awards}
}

// GetLeaderboard возвращает общий лидерборд по total_points.
// Ранг = offset + позиция + 1.
func (s *Service) GetLeaderboard(ctx context.Context, limit, offset int) ([]*Entry, error) {
	entries, err := s.store.TopByTotalPoints(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		e.Rank = int64(offset + i + 1)
	}
	return entries, nil
}

// GetWeeklyLeaderboard — лидерборд по журналу за скользящие 7 суток.
func (s *Service) GetWeeklyLeaderboard(ctx context.Context, limit int) ([]*Entry, error) {
	return s.windowLeaderboard(ctx, time.Now().UTC().Add(-weeklyWindow), limit)
}

// GetMonthlyLeaderboard — лидерборд по журналу за скользящий календарный
// месяц (вычитание месяца, не фиксированные 30 суток).
func (s *Service) GetMonthlyLeaderboard(ctx context.Context, limit int) ([]*Entry, error) {
	return s.windowLeaderboard(ctx, time.Now().UTC().AddDate(0, -1, 0), limit)
}

func (s *Service) windowLeaderboard(ctx context.Context, since time.Time, limit int) ([]*Entry, error) {
	entries, err := s.store.TopByWindow(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		e.Rank = int64(i + 1)
	}
	return entries, nil
}

// GetUserRankings возвращает три независимых ранга участника.
func (s *Service) GetUserRankings(ctx context.Context, userID int64) (*Rankings, error) {
	now := time.Now().UTC()

	total, err := s.store.TotalRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.store.WindowRank(ctx, userID, now.Add(-weeklyWindow))
	if err != nil {
		return nil, err
	}
	monthly, err := s.store.WindowRank(ctx, userID, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	return &Rankings{Total: total, Weekly: weekly, Monthly: monthly}, nil
}

// UpdateMonthlyTopContributor находит лучшего участника месяца и выдаёт
// (или обновляет) ему бейдж «Citizen of the Month». Это единственный путь
// выдачи custom-бейджа monthly_top — проверка бейджей его не выдаёт никогда.
// Пустой месячный лидерборд — ничего не делаем, ничего не пишем.
func (s *Service) UpdateMonthlyTopContributor(ctx context.Context) (*Entry, error) {
	top, err := s.GetMonthlyLeaderboard(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}

	winner := top[0]

	badge, err := s.awards.GetByName(ctx, monthlyTopBadgeName)
	if err != nil {
		if errors.Is(err, common.ErrBadgeNotFound) {
			log.Warn("Бейдж месяца отсутствует в каталоге, выдача пропущена")
			return winner, nil
		}
		return nil, err
	}

	if err := s.awards.RefreshAward(ctx, winner.UserID, badge.ID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": winner.UserID,
		"points":  winner.Points,
	}).Info("Обновлён лучший участник месяца")
	return winner, nil
}
