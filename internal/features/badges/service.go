// Package badges — service.go: проверка правил и выдача бейджей.
package badges

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/common"
	"citizen-bot/internal/features/users"
)

// Catalog — хранилище каталога и выдач (реализуется *Repository).
type Catalog interface {
	Upsert(ctx context.Context, b *Badge) error
	GetByName(ctx context.Context, name string) (*Badge, error)
	ListActive(ctx context.Context) ([]*Badge, error)
	HeldBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	Award(ctx context.Context, userID, badgeID int64) (bool, error)
	RefreshAward(ctx context.Context, userID, badgeID int64) error
	UserBadges(ctx context.Context, userID int64) ([]*EarnedBadge, error)
	Create(ctx context.Context, b *Badge) error
}

// UserDirectory — чтение статистики участника (реализуется users.Repository).
type UserDirectory interface {
	GetByUserID(ctx context.Context, userID int64) (*users.User, error)
}

// Service проверяет правила и выдаёт бейджи.
type Service struct {
	catalog Catalog
	users   UserDirectory
}

// NewService создаёт сервис бейджей.
func NewService(catalog Catalog, users UserDirectory) *Service {
	return &Service{catalog: catalog, users: users}
}

// CheckAndAwardBadges проверяет все активные бейджи и выдаёт те,
// чьи правила участник выполняет. Возвращает имена бейджей, выданных
// именно этим вызовом: при параллельной двойной проверке конкретный
// бейдж попадёт в результат ровно одного вызова.
func (s *Service) CheckAndAwardBadges(ctx context.Context, userID int64) ([]string, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	held, err := s.catalog.HeldBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.catalog.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var awarded []string
	for _, badge := range active {
		if held[badge.ID] {
			continue
		}

		req, err := ParseRequirement(badge.Requirement)
		if err != nil {
			// Кривое правило в каталоге — бейдж не выдаём, но не падаем
			log.WithError(err).WithField("badge", badge.Name).Warn("Нечитаемое правило бейджа")
			continue
		}
		if !req.Meets(user, now) {
			continue
		}

		created, err := s.catalog.Award(ctx, userID, badge.ID)
		if err != nil {
			return awarded, err
		}
		if created {
			awarded = append(awarded, badge.Name)
		}
	}

	if len(awarded) > 0 {
		log.WithFields(log.Fields{
			"user_id": userID,
			"badges":  awarded,
		}).Info("Выданы новые бейджи")
	}
	return awarded, nil
}

// AwardByName выдаёт бейдж вручную (админский сценарий).
// Возвращает false, если участник уже имел этот бейдж.
func (s *Service) AwardByName(ctx context.Context, userID int64, name string, adminID int64) (bool, error) {
	badge, err := s.catalog.GetByName(ctx, name)
	if err != nil {
		return false, err
	}

	created, err := s.catalog.Award(ctx, userID, badge.ID)
	if err != nil {
		return false, err
	}
	if created {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"badge":    name,
			"admin_id": adminID,
		}).Info("Бейдж выдан вручную")
	}
	return created, nil
}

// GetUserBadges возвращает бейджи участника.
func (s *Service) GetUserBadges(ctx context.Context, userID int64) ([]*EarnedBadge, error) {
	return s.catalog.UserBadges(ctx, userID)
}

// GetBadgeByName возвращает бейдж каталога.
func (s *Service) GetBadgeByName(ctx context.Context, name string) (*Badge, error) {
	return s.catalog.GetByName(ctx, name)
}

// CreateCustomBadge добавляет в каталог новый бейдж с произвольным правилом.
func (s *Service) CreateCustomBadge(ctx context.Context, name, description, icon string, rarity Rarity, req Requirement) error {
	raw, err := req.Encode()
	if err != nil {
		return err
	}
	return s.catalog.Create(ctx, &Badge{
		Name:        name,
		Description: description,
		Icon:        icon,
		Rarity:      rarity,
		Requirement: raw,
		IsActive:    true,
	})
}

// InitializeDefaultBadges идемпотентно загружает стандартный каталог.
// Безопасно звать при каждом старте: существующие бейджи не трогаются.
func (s *Service) InitializeDefaultBadges(ctx context.Context) error {
	defaults := []struct {
		name        string
		description string
		icon        string
		rarity      Rarity
		req         Requirement
	}{
		{"First Steps", "Первое сообщение", "👶", RarityCommon, Requirement{Type: ReqMessages, Threshold: 1}},
		{"Chatterbox", "100 сообщений", "💬", RarityCommon, Requirement{Type: ReqMessages, Threshold: 100}},
		{"Voice Active", "60 минут в голосовых чатах", "🎤", RarityUncommon, Requirement{Type: ReqVoice, Threshold: 60}},
		{"Rising Star", "1000 очков", "⭐", RarityUncommon, Requirement{Type: ReqPoints, Threshold: 1000}},
		{"Helper", "50 полученных реакций", "🤝", RarityRare, Requirement{Type: ReqReactions, Threshold: 50}},
		{"Level 10", "Десятый уровень", "🔟", RarityRare, Requirement{Type: ReqLevel, Threshold: 10}},
		{"Citizen of the Month", "Лучший участник месяца", "👑", RarityLegendary, Requirement{Type: ReqCustom, Condition: CondMonthlyTop}},
		{"Veteran", "Полгода в сообществе", "🏆", RarityEpic, Requirement{Type: ReqCustom, Condition: CondVeteran}},
	}

	for _, d := range defaults {
		raw, err := d.req.Encode()
		if err != nil {
			return err
		}
		badge := &Badge{
			Name:        d.name,
			Description: d.description,
			Icon:        d.icon,
			Rarity:      d.rarity,
			Requirement: raw,
			IsActive:    true,
		}
		if err := s.catalog.Upsert(ctx, badge); err != nil {
			return err
		}
	}

	log.Info("Стандартный каталог бейджей загружен")
	return nil
}
