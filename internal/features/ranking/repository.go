// Package ranking — repository.go: запросы лидербордов и рангов.
// Общий лидерборд читает бегущие суммы из users; оконные (неделя/месяц)
// агрегируют журнал point_history — он источник истины для окон.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"citizen-bot/internal/common"
)

// Repository выполняет запросы рангов.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий рангов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// TopByTotalPoints возвращает участников по убыванию total_points.
// Ранги проставляет сервис (offset + позиция + 1).
func (r *Repository) TopByTotalPoints(ctx context.Context, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT user_id, username, display_name, total_points, level
		FROM users
		ORDER BY total_points DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса лидерборда: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.Points, &e.Level); err != nil {
			return nil, fmt.Errorf("ошибка сканирования лидерборда: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк лидерборда: %w", err)
	}
	return out, nil
}

// TopByWindow возвращает участников по убыванию суммы начислений
// в журнале начиная с since. Участники без записей в окне отсутствуют.
func (r *Repository) TopByWindow(ctx context.Context, since time.Time, limit int) ([]*Entry, error) {
	query := `
		SELECT ph.user_id, u.username, u.display_name, SUM(ph.points) AS window_points, u.level
		FROM point_history ph
		JOIN users u ON u.user_id = ph.user_id
		WHERE ph.created_at >= $1
		GROUP BY ph.user_id, u.username, u.display_name, u.level
		ORDER BY window_points DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса оконного лидерборда: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.Points, &e.Level); err != nil {
			return nil, fmt.Errorf("ошибка сканирования оконного лидерборда: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк оконного лидерборда: %w", err)
	}
	return out, nil
}

// TotalRank — общий ранг: 1 + число участников со строго большей суммой.
// Неизвестный участник — common.ErrUserNotFound, а не фиктивный первый ранг.
func (r *Repository) TotalRank(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM users other WHERE other.total_points > u.total_points) + 1
		FROM users u
		WHERE u.user_id = $1
	`
	var rank int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&rank); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка запроса общего ранга: %w", err)
	}
	return rank, nil
}

// WindowRank — оконный ранг: 1 + число участников, чья сумма в окне
// строго больше суммы этого участника. Отсутствие активности в окне —
// это сумма 0 (COALESCE), вполне допустимая база для сравнения.
func (r *Repository) WindowRank(ctx context.Context, userID int64, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) + 1
		FROM (
			SELECT user_id, SUM(points) AS window_points
			FROM point_history
			WHERE created_at >= $2
			GROUP BY user_id
		) window_totals
		WHERE window_points > (
			SELECT COALESCE(SUM(points), 0)
			FROM point_history
			WHERE user_id = $1 AND created_at >= $2
		)
	`
	var rank int64
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&rank); err != nil {
		return 0, fmt.Errorf("ошибка запроса оконного ранга: %w", err)
	}
	return rank, nil
}
