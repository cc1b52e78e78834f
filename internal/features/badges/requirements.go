// Package badges — requirements.go: типизированные правила получения бейджа
// и их проверка по статистике участника.
package badges

import (
	"encoding/json"
	"time"

	"citizen-bot/internal/features/users"
)

// Типы правил.
const (
	ReqPoints    = "points"
	ReqMessages  = "messages"
	ReqVoice     = "voice"
	ReqReactions = "reactions"
	ReqLevel     = "level"
	ReqCustom    = "custom"
)

// Именованные custom-условия.
const (
	// Полгода с момента первой активности
	CondVeteran = "veteran"
	// Лучший за месяц; выдаётся только планировщиком, проверкой — никогда
	CondMonthlyTop = "monthly_top"
)

// Стаж для бейджа «Ветеран» — 6 календарных месяцев.
const veteranTenureMonths = 6

// Requirement — правило получения бейджа.
// Либо порог по счётчику (type + threshold), либо именованное
// custom-условие (type: "custom" + condition).
type Requirement struct {
	Type      string `json:"type"`
	Threshold int64  `json:"threshold,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// ParseRequirement разбирает JSON-правило из каталога.
func ParseRequirement(raw string) (Requirement, error) {
	var req Requirement
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return Requirement{}, err
	}
	return req, nil
}

// Encode сериализует правило для хранения в каталоге.
func (r Requirement) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Meets проверяет, выполняет ли участник правило в момент now.
// Неизвестный тип или условие — false: бейдж просто не выдаётся,
// ошибкой это не считается.
func (r Requirement) Meets(u *users.User, now time.Time) bool {
	switch r.Type {
	case ReqPoints:
		return u.TotalPoints >= r.Threshold
	case ReqMessages:
		return u.MessagesCount >= r.Threshold
	case ReqVoice:
		return u.VoiceMinutes >= r.Threshold
	case ReqReactions:
		return u.ReactionsReceived >= r.Threshold
	case ReqLevel:
		return u.Level >= r.Threshold
	case ReqCustom:
		return r.meetsCustom(u, now)
	default:
		return false
	}
}

func (r Requirement) meetsCustom(u *users.User, now time.Time) bool {
	switch r.Condition {
	case CondVeteran:
		// Календарные месяцы, не фиксированное число дней
		return u.JoinedAt.Before(now.AddDate(0, -veteranTenureMonths, 0))
	case CondMonthlyTop:
		return false
	default:
		return false
	}
}
