// Package users управляет участниками сообщества: регистрацией при первой
// активности, счётчиками активности и агрегированной статистикой.
// models.go описывает структуры данных для работы с таблицей users.
package users

import "time"

// User представляет участника сообщества в базе данных.
// Запись создаётся лениво — при первой наблюдаемой активности
// (сообщение, реакция, голосовой чат). Записи никогда не удаляются.
type User struct {
	ID                int64     `db:"id"`                 // Автоинкрементный ID записи в БД
	UserID            int64     `db:"user_id"`            // Telegram user ID (уникальный)
	Username          string    `db:"username"`           // @username (может быть пустым)
	DisplayName       string    `db:"display_name"`       // Отображаемое имя
	TotalPoints       int64     `db:"total_points"`       // Текущая сумма очков (не опускается ниже 0)
	Experience        int64     `db:"experience"`         // Опыт: растёт только на положительных начислениях
	Level             int64     `db:"level"`              // Уровень, производный от опыта
	MessagesCount     int64     `db:"messages_count"`     // Сколько сообщений написал
	VoiceMinutes      int64     `db:"voice_minutes"`      // Минут в голосовых чатах
	ReactionsGiven    int64     `db:"reactions_given"`    // Сколько реакций поставил
	ReactionsReceived int64     `db:"reactions_received"` // Сколько реакций получил
	ReportsReceived   int64     `db:"reports_received"`   // Сколько жалоб получил
	LastActive        time.Time `db:"last_active"`        // Последняя активность
	JoinedAt          time.Time `db:"joined_at"`          // Когда впервые замечен (неизменяемо)
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Stats — агрегированная статистика участника для профиля и проверки бейджей.
type Stats struct {
	TotalPoints       int64
	Level             int64
	Experience        int64
	MessagesCount     int64
	VoiceMinutes      int64
	ReactionsGiven    int64
	ReactionsReceived int64
	ReportsReceived   int64
}

// Display возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — display_name.
func (u *User) Display() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return "аноним"
}
