// Package bot — voicetrack.go отслеживает участие в видеочатах группы.
// Telegram не присылает событий выхода отдельных участников, поэтому
// сессии закрываются скопом при завершении видеочата (VideoChatEnded).
package bot

import (
	"sync"
	"time"
)

// VoiceTracker хранит открытые голосовые сессии в памяти.
// При рестарте бота открытые сессии теряются — минуты не начислятся.
type VoiceTracker struct {
	mu       sync.Mutex
	sessions map[int64]time.Time // user_id → время входа
}

// NewVoiceTracker создаёт трекер голосовых сессий.
func NewVoiceTracker() *VoiceTracker {
	return &VoiceTracker{sessions: make(map[int64]time.Time)}
}

// Join открывает сессию участника. Повторный вход не сбрасывает
// время начала — считается с первого входа.
func (t *VoiceTracker) Join(userID int64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[userID]; !ok {
		t.sessions[userID] = now
	}
}

// CloseAll закрывает все открытые сессии и возвращает карту
// user_id → целые минуты в чате. Неполная минута отбрасывается.
func (t *VoiceTracker) CloseAll(now time.Time) map[int64]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int64]int64, len(t.sessions))
	for userID, joined := range t.sessions {
		out[userID] = int64(now.Sub(joined) / time.Minute)
	}
	t.sessions = make(map[int64]time.Time)
	return out
}

// Active возвращает число открытых сессий.
func (t *VoiceTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
