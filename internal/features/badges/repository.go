// Package badges — repository.go выполняет операции с таблицами badges
// и user_badges. Выдача идемпотентна на уровне БД: уникальная пара
// (user_id, badge_id) плюс ON CONFLICT DO NOTHING.
package badges

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"citizen-bot/internal/common"
)

// Repository работает с таблицами badges и user_badges.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий бейджей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert добавляет бейдж в каталог по уникальному имени.
// Существующий бейдж не трогается — бутстрап можно звать сколько угодно раз.
func (r *Repository) Upsert(ctx context.Context, b *Badge) error {
	query := `
		INSERT INTO badges (name, description, icon, rarity, requirement, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, b.Name, b.Description, b.Icon, string(b.Rarity), b.Requirement, b.IsActive)
	if err != nil {
		return fmt.Errorf("ошибка добавления бейджа %q: %w", b.Name, err)
	}
	return nil
}

// GetByName возвращает бейдж каталога. Если нет — common.ErrBadgeNotFound.
func (r *Repository) GetByName(ctx context.Context, name string) (*Badge, error) {
	query := `
		SELECT id, name, description, icon, rarity, requirement, is_active, created_at
		FROM badges
		WHERE name = $1
	`
	var b Badge
	var rarity string
	err := r.db.QueryRow(ctx, query, name).Scan(
		&b.ID, &b.Name, &b.Description, &b.Icon, &rarity, &b.Requirement, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("ошибка чтения бейджа %q: %w", name, err)
	}
	b.Rarity = Rarity(rarity)
	return &b, nil
}

// ListActive возвращает активные бейджи каталога.
func (r *Repository) ListActive(ctx context.Context) ([]*Badge, error) {
	query := `
		SELECT id, name, description, icon, rarity, requirement, is_active, created_at
		FROM badges
		WHERE is_active = TRUE
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	defer rows.Close()

	var out []*Badge
	for rows.Next() {
		var b Badge
		var rarity string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &rarity, &b.Requirement, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования бейджа: %w", err)
		}
		b.Rarity = Rarity(rarity)
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк каталога: %w", err)
	}
	return out, nil
}

// HeldBadgeIDs возвращает множество ID бейджей, которые участник уже имеет.
func (r *Repository) HeldBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения бейджей участника: %w", err)
	}
	defer rows.Close()

	held := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		held[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return held, nil
}

// Award выдаёт бейдж. Возвращает true, если запись действительно создана:
// при параллельной двойной проверке вставится ровно одна строка,
// второй вызов получит false без ошибки.
func (r *Repository) Award(ctx context.Context, userID, badgeID int64) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи бейджа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RefreshAward выдаёт бейдж или обновляет время получения, если он уже есть.
// Используется только для «Гражданина месяца».
func (r *Repository) RefreshAward(ctx context.Context, userID, badgeID int64) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO UPDATE SET earned_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, badgeID); err != nil {
		return fmt.Errorf("ошибка обновления бейджа: %w", err)
	}
	return nil
}

// UserBadges возвращает бейджи участника, свежие первыми.
func (r *Repository) UserBadges(ctx context.Context, userID int64) ([]*EarnedBadge, error) {
	query := `
		SELECT b.name, b.icon, b.rarity, ub.earned_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения бейджей участника: %w", err)
	}
	defer rows.Close()

	var out []*EarnedBadge
	for rows.Next() {
		var e EarnedBadge
		var rarity string
		if err := rows.Scan(&e.Name, &e.Icon, &rarity, &e.EarnedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		e.Rarity = Rarity(rarity)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Create добавляет новый бейдж (админский сценарий).
func (r *Repository) Create(ctx context.Context, b *Badge) error {
	query := `
		INSERT INTO badges (name, description, icon, rarity, requirement, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.Exec(ctx, query, b.Name, b.Description, b.Icon, string(b.Rarity), b.Requirement, b.IsActive); err != nil {
		return fmt.Errorf("ошибка создания бейджа: %w", err)
	}
	return nil
}
