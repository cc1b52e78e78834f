// Package users — service.go содержит бизнес-логику управления участниками.
package users

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/common"
)

// Service управляет участниками сообщества.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис участников.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureExists гарантирует, что участник есть в базе.
// Вызывается перед любым начислением очков: запись создаётся лениво,
// при первой наблюдаемой активности.
func (s *Service) EnsureExists(ctx context.Context, userID int64, username, displayName string) error {
	return s.repo.Ensure(ctx, userID, username, displayName)
}

// GetStats возвращает агрегированную статистику участника.
// Если участника нет — (nil, nil): отсутствие профиля не ошибка.
func (s *Service) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	u, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &Stats{
		TotalPoints:       u.TotalPoints,
		Level:             u.Level,
		Experience:        u.Experience,
		MessagesCount:     u.MessagesCount,
		VoiceMinutes:      u.VoiceMinutes,
		ReactionsGiven:    u.ReactionsGiven,
		ReactionsReceived: u.ReactionsReceived,
		ReportsReceived:   u.ReportsReceived,
	}, nil
}

// GetByUserID возвращает участника по Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает участника по @username (без @).
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// IncrementReportsReceived фиксирует жалобу на участника.
// Вызывается из админки при штрафе за репорт.
func (s *Service) IncrementReportsReceived(ctx context.Context, userID int64) error {
	if err := s.repo.IncrementReportsReceived(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось записать жалобу")
		return err
	}
	return nil
}

// CountUsers возвращает общее число участников.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}
