package bot

import (
	"testing"
	"time"
)

func TestVoiceTrackerCloseAll(t *testing.T) {
	tracker := NewVoiceTracker()
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	tracker.Join(1, start)
	tracker.Join(2, start.Add(3*time.Minute))

	// Неполные минуты отбрасываются
	sessions := tracker.CloseAll(start.Add(10*time.Minute + 30*time.Second))
	if sessions[1] != 10 {
		t.Errorf("участник 1: %d минут, ожидалось 10", sessions[1])
	}
	if sessions[2] != 7 {
		t.Errorf("участник 2: %d минут, ожидалось 7", sessions[2])
	}

	if tracker.Active() != 0 {
		t.Error("после CloseAll не должно остаться открытых сессий")
	}
}

// Повторный вход не сбрасывает время начала сессии.
func TestVoiceTrackerRepeatedJoin(t *testing.T) {
	tracker := NewVoiceTracker()
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	tracker.Join(1, start)
	tracker.Join(1, start.Add(5*time.Minute))

	sessions := tracker.CloseAll(start.Add(10 * time.Minute))
	if sessions[1] != 10 {
		t.Errorf("минут = %d, ожидалось 10 (с первого входа)", sessions[1])
	}
}

func TestVoiceTrackerEmpty(t *testing.T) {
	tracker := NewVoiceTracker()
	if sessions := tracker.CloseAll(time.Now()); len(sessions) != 0 {
		t.Errorf("пустой трекер вернул %v", sessions)
	}
}
