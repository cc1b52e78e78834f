// Package badges реализует систему бейджей: каталог, правила получения
// и выдачу. models.go описывает структуры каталога и связки «участник-бейдж».
package badges

import "time"

// Rarity — редкость бейджа.
type Rarity string

// Уровни редкости. Хранятся в БД как строки.
const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Badge — запись каталога бейджей.
type Badge struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"` // Уникальное имя
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Rarity      Rarity    `db:"rarity"`
	Requirement string    `db:"requirement"` // JSON-правило получения
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// UserBadge — факт выдачи бейджа участнику.
// Пара (user_id, badge_id) уникальна; повторная выдача — no-op
// (кроме «Гражданина месяца», у которого обновляется earned_at).
type UserBadge struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	BadgeID  int64     `db:"badge_id"`
	EarnedAt time.Time `db:"earned_at"`
}

// EarnedBadge — бейдж участника вместе с данными каталога (для профиля).
type EarnedBadge struct {
	Name     string
	Icon     string
	Rarity   Rarity
	EarnedAt time.Time
}
