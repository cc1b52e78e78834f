// Package scoring реализует начисление очков за активность.
// models.go описывает журнал начислений и категории событий.
package scoring

import "time"

// Category — категория записи в журнале начислений.
type Category string

// Категории начислений. Хранятся в БД как строки.
const (
	CategoryMessage           Category = "MESSAGE"
	CategoryQualityMessage    Category = "QUALITY_MESSAGE"
	CategoryReactionBonus     Category = "REACTION_BONUS"
	CategoryVoiceActivity     Category = "VOICE_ACTIVITY"
	CategorySpamPenalty       Category = "SPAM_PENALTY"
	CategoryAdminAdjustment   Category = "ADMIN_ADJUSTMENT"
	CategoryGhostVoicePenalty Category = "GHOST_VOICE_PENALTY"
	CategoryReportPenalty     Category = "REPORT_PENALTY"
	CategoryLeakPenalty       Category = "LEAK_PENALTY"
)

// PointHistory — неизменяемая запись журнала начислений.
// Журнал append-only: записи никогда не меняются и не удаляются.
// Недельные и месячные лидерборды считаются именно по нему.
type PointHistory struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Points    int64     `db:"points"` // Дельта со знаком
	Reason    string    `db:"reason"`
	Category  Category  `db:"category"`
	AdminID   *int64    `db:"admin_id"` // Кто начислил вручную (nil для автоматики)
	CreatedAt time.Time `db:"created_at"`
}
