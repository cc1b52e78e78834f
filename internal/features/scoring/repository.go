// Package scoring — repository.go выполняет операции с таблицей point_history
// и транзакцию начисления. Обновление суммы очков и запись в журнал происходят
// в одной транзакции БД: журнал и бегущие суммы не могут разойтись.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"citizen-bot/internal/common"
)

// Repository работает с таблицами users (суммы) и point_history (журнал).
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий начислений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Award атомарно применяет дельту очков и дописывает запись журнала.
//
// Внутри одной транзакции:
//  1. строка пользователя блокируется (FOR UPDATE) — параллельные начисления
//     не теряют апдейты;
//  2. total_points := max(0, total_points + delta);
//  3. опыт растёт только на положительной дельте, уровень пересчитывается;
//  4. в point_history добавляется запись.
//
// Если пользователя нет — common.ErrUserNotFound, никаких частичных изменений.
func (r *Repository) Award(ctx context.Context, userID, delta int64, reason string, category Category, adminID *int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var total, experience int64
	err = tx.QueryRow(ctx, `
		SELECT total_points, experience FROM users WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&total, &experience)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("ошибка чтения сумм (user_id=%d): %w", userID, err)
	}

	total, experience, level := applyDelta(total, experience, delta)

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_points = $2, experience = $3, level = $4,
		    last_active = NOW(), updated_at = NOW()
		WHERE user_id = $1
	`, userID, total, experience, level)
	if err != nil {
		return fmt.Errorf("ошибка обновления сумм: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO point_history (user_id, points, reason, category, admin_id)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, delta, reason, string(category), adminID)
	if err != nil {
		return fmt.Errorf("ошибка записи журнала: %w", err)
	}

	return tx.Commit(ctx)
}

// applyDelta — чистая арифметика начисления: сумма не опускается ниже нуля,
// опыт растёт только на положительной дельте, уровень производен от опыта.
func applyDelta(total, experience, delta int64) (newTotal, newExperience, level int64) {
	total += delta
	if total < 0 {
		total = 0
	}
	if delta > 0 {
		experience += delta
	}
	return total, experience, CalculateLevel(experience)
}

// History возвращает последние limit записей журнала пользователя.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]*PointHistory, error) {
	query := `
		SELECT id, user_id, points, reason, category, admin_id, created_at
		FROM point_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	defer rows.Close()

	var out []*PointHistory
	for rows.Next() {
		var h PointHistory
		var category string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Points, &h.Reason, &category, &h.AdminID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		h.Category = Category(category)
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк истории: %w", err)
	}
	return out, nil
}

// LedgerStats возвращает размер журнала и сумму всех положительных
// начислений (для серверной статистики в админке).
func (r *Repository) LedgerStats(ctx context.Context) (entries int64, awarded int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(points) FILTER (WHERE points > 0), 0)
		FROM point_history
	`).Scan(&entries, &awarded)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка статистики журнала: %w", err)
	}
	return entries, awarded, nil
}
