// Package scoring — service.go содержит бизнес-логику начисления очков:
// обработку сообщений, реакций и голосовой активности.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/config"
)

// Фиксированный бонус за реакции. Срабатывает на каждой реакции
// после порога, не один раз.
const reactionBonusPoints = 2

// Ledger — журнал начислений (реализуется *Repository).
type Ledger interface {
	Award(ctx context.Context, userID, delta int64, reason string, category Category, adminID *int64) error
	History(ctx context.Context, userID int64, limit int) ([]*PointHistory, error)
	LedgerStats(ctx context.Context) (entries int64, awarded int64, err error)
}

// UserCounters — счётчики активности участников (реализуется users.Repository).
type UserCounters interface {
	Ensure(ctx context.Context, userID int64, username, displayName string) error
	IncrementMessages(ctx context.Context, userID int64) error
	IncrementVoiceMinutes(ctx context.Context, userID int64, minutes int64) error
	IncrementReactionsGiven(ctx context.Context, userID int64) error
	IncrementReactionsReceived(ctx context.Context, userID int64) (int64, error)
}

// Service начисляет очки за активность.
type Service struct {
	ledger Ledger
	users  UserCounters
	cfg    *config.Config
	spam   *SpamTracker
}

// NewService создаёт сервис начислений.
func NewService(ledger Ledger, users UserCounters, cfg *config.Config) *Service {
	return &Service{
		ledger: ledger,
		users:  users,
		cfg:    cfg,
		spam:   NewSpamTracker(),
	}
}

// Close останавливает фоновые горутины сервиса.
func (s *Service) Close() {
	s.spam.Close()
}

// AwardPoints начисляет дельту очков с записью в журнал.
// Пользователь должен существовать (EnsureExists — забота вызывающего).
func (s *Service) AwardPoints(ctx context.Context, userID, delta int64, reason string, category Category, adminID *int64) error {
	if err := s.ledger.Award(ctx, userID, delta, reason, category, adminID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"delta":    delta,
		"category": category,
	}).Info("Очки начислены")
	return nil
}

// ProcessMessage обрабатывает сообщение участника.
// Сначала спам-детектор: спамеру вместо очков достаётся штраф.
// Затем классификация качества и начисление, после — инкремент счётчика
// сообщений (отдельным атомарным апдейтом, вне транзакции начисления).
func (s *Service) ProcessMessage(ctx context.Context, authorID int64, content string, hasAttachment, hasEmbed bool) error {
	if s.spam.Track(authorID, time.Now()) {
		return s.AwardPoints(ctx, authorID, s.cfg.SpamPenalty, "Спам-детектор", CategorySpamPenalty, nil)
	}

	quality := IsQualityMessage(content, hasAttachment, hasEmbed)

	points := s.cfg.BaseMessagePoints
	reason := "Обычное сообщение"
	category := CategoryMessage
	if quality {
		points = s.cfg.BaseMessagePoints * s.cfg.QualityMessageMultiplier
		reason = "Качественное сообщение"
		category = CategoryQualityMessage
	}

	if err := s.AwardPoints(ctx, authorID, points, reason, category, nil); err != nil {
		return err
	}

	return s.users.IncrementMessages(ctx, authorID)
}

// ProcessReaction обрабатывает реакцию на сообщение.
// Реакция на собственное сообщение не считается. Оба участника создаются
// при необходимости; счётчики обновляются атомарными инкрементами.
// Когда полученных реакций становится не меньше порога — автору капает
// фиксированный бонус (на каждой реакции после порога).
func (s *Service) ProcessReaction(ctx context.Context, messageAuthorID, reactorID int64) error {
	if messageAuthorID == reactorID {
		return nil
	}

	if err := s.users.Ensure(ctx, reactorID, "", ""); err != nil {
		return fmt.Errorf("ошибка регистрации реактора: %w", err)
	}
	if err := s.users.Ensure(ctx, messageAuthorID, "", ""); err != nil {
		return fmt.Errorf("ошибка регистрации автора: %w", err)
	}

	if err := s.users.IncrementReactionsGiven(ctx, reactorID); err != nil {
		return err
	}

	received, err := s.users.IncrementReactionsReceived(ctx, messageAuthorID)
	if err != nil {
		return err
	}

	if received >= s.cfg.ReactionBonusThreshold {
		reason := fmt.Sprintf("Бонус за реакции (%d)", received)
		return s.AwardPoints(ctx, messageAuthorID, reactionBonusPoints, reason, CategoryReactionBonus, nil)
	}
	return nil
}

// ProcessVoiceActivity начисляет очки за minutes минут в голосовом чате.
// points = floor(minutes × VoicePointsPerMinute); при нуле очков ни
// начисления, ни инкремента минут не происходит.
func (s *Service) ProcessVoiceActivity(ctx context.Context, userID int64, minutes int64) error {
	points := int64(math.Floor(float64(minutes) * s.cfg.VoicePointsPerMinute))
	if points <= 0 {
		return nil
	}

	reason := fmt.Sprintf("Голосовая активность (%d мин)", minutes)
	if err := s.AwardPoints(ctx, userID, points, reason, CategoryVoiceActivity, nil); err != nil {
		return err
	}

	return s.users.IncrementVoiceMinutes(ctx, userID, minutes)
}

// PenalizeUser снимает очки: дельта всегда неположительная,
// независимо от знака penalty на входе.
func (s *Service) PenalizeUser(ctx context.Context, userID, penalty int64, reason string, category Category, adminID *int64) error {
	if penalty < 0 {
		penalty = -penalty
	}
	return s.AwardPoints(ctx, userID, -penalty, reason, category, adminID)
}

// GetHistory возвращает последние limit записей журнала пользователя.
func (s *Service) GetHistory(ctx context.Context, userID int64, limit int) ([]*PointHistory, error) {
	return s.ledger.History(ctx, userID, limit)
}

// GetLedgerStats возвращает сводку журнала: всего записей и сумму
// положительных начислений (для админской статистики).
func (s *Service) GetLedgerStats(ctx context.Context) (entries int64, awarded int64, err error) {
	return s.ledger.LedgerStats(ctx)
}
