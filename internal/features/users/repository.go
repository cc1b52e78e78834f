// Package users — repository.go отвечает за все операции с таблицей users в БД.
// Счётчики активности обновляются атомарными инкрементами на стороне БД,
// а не чтением-изменением-записью: параллельные события не должны терять апдейты.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"citizen-bot/internal/common"
)

// Repository работает с таблицей users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий участников.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ensure создаёт участника при первой активности или обновляет его имена.
// Имена обновляются по принципу last-write-wins, но пустые значения
// не затирают сохранённые (реакции приходят без username).
func (r *Repository) Ensure(ctx context.Context, userID int64, username, displayName string) error {
	query := `
		INSERT INTO users (user_id, username, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET username     = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
		    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		    last_active  = NOW(),
		    updated_at   = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, username, displayName); err != nil {
		return fmt.Errorf("ошибка регистрации участника: %w", err)
	}
	return nil
}

// GetByUserID возвращает участника. Если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	query := `
		SELECT id, user_id, username, display_name,
		       total_points, experience, level,
		       messages_count, voice_minutes, reactions_given, reactions_received, reports_received,
		       last_active, joined_at, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var u User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.UserID, &u.Username, &u.DisplayName,
		&u.TotalPoints, &u.Experience, &u.Level,
		&u.MessagesCount, &u.VoiceMinutes, &u.ReactionsGiven, &u.ReactionsReceived, &u.ReportsReceived,
		&u.LastActive, &u.JoinedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения участника (user_id=%d): %w", userID, err)
	}
	return &u, nil
}

// GetByUsername возвращает участника по @username (без @).
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, user_id, username, display_name,
		       total_points, experience, level,
		       messages_count, voice_minutes, reactions_given, reactions_received, reports_received,
		       last_active, joined_at, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`
	var u User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.UserID, &u.Username, &u.DisplayName,
		&u.TotalPoints, &u.Experience, &u.Level,
		&u.MessagesCount, &u.VoiceMinutes, &u.ReactionsGiven, &u.ReactionsReceived, &u.ReportsReceived,
		&u.LastActive, &u.JoinedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения участника (username=%s): %w", username, err)
	}
	return &u, nil
}

// Exists проверяет, есть ли участник в базе.
func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки существования: %w", err)
	}
	return exists, nil
}

// IncrementMessages атомарно увеличивает счётчик сообщений на 1.
func (r *Repository) IncrementMessages(ctx context.Context, userID int64) error {
	query := `UPDATE users SET messages_count = messages_count + 1, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка инкремента сообщений: %w", err)
	}
	return nil
}

// IncrementVoiceMinutes атомарно прибавляет минуты голосовой активности.
func (r *Repository) IncrementVoiceMinutes(ctx context.Context, userID int64, minutes int64) error {
	query := `UPDATE users SET voice_minutes = voice_minutes + $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, minutes); err != nil {
		return fmt.Errorf("ошибка инкремента голосовых минут: %w", err)
	}
	return nil
}

// IncrementReactionsGiven атомарно увеличивает счётчик поставленных реакций.
func (r *Repository) IncrementReactionsGiven(ctx context.Context, userID int64) error {
	query := `UPDATE users SET reactions_given = reactions_given + 1, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка инкремента поставленных реакций: %w", err)
	}
	return nil
}

// IncrementReactionsReceived атомарно увеличивает счётчик полученных реакций
// и возвращает НОВОЕ значение (нужно для бонуса за реакции).
func (r *Repository) IncrementReactionsReceived(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE users
		SET reactions_received = reactions_received + 1, updated_at = NOW()
		WHERE user_id = $1
		RETURNING reactions_received
	`
	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка инкремента полученных реакций: %w", err)
	}
	return count, nil
}

// IncrementReportsReceived атомарно увеличивает счётчик жалоб.
func (r *Repository) IncrementReportsReceived(ctx context.Context, userID int64) error {
	query := `UPDATE users SET reports_received = reports_received + 1, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка инкремента жалоб: %w", err)
	}
	return nil
}

// CountUsers возвращает общее число участников (для серверной статистики).
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта участников: %w", err)
	}
	return count, nil
}
