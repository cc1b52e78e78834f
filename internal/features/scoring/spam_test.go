package scoring

import (
	"testing"
	"time"
)

func TestSpamTrackerBurst(t *testing.T) {
	tracker := NewSpamTracker()
	defer tracker.Close()

	now := time.Now()

	// Первые три сообщения в серии — не спам, четвёртое — спам
	for i := 0; i < 3; i++ {
		if tracker.Track(42, now.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatalf("сообщение %d не должно считаться спамом", i+1)
		}
	}
	if !tracker.Track(42, now.Add(300*time.Millisecond)) {
		t.Fatal("четвёртое быстрое сообщение должно считаться спамом")
	}
}

func TestSpamTrackerSeriesReset(t *testing.T) {
	tracker := NewSpamTracker()
	defer tracker.Close()

	now := time.Now()

	for i := 0; i < 3; i++ {
		tracker.Track(42, now.Add(time.Duration(i)*100*time.Millisecond))
	}

	// Пауза больше секунды сбрасывает серию
	later := now.Add(2 * time.Second)
	if tracker.Track(42, later) {
		t.Fatal("после паузы серия должна сброситься")
	}
	// И снова нужно четыре быстрых сообщения
	for i := 1; i < 3; i++ {
		if tracker.Track(42, later.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatalf("сообщение %d новой серии не должно считаться спамом", i+1)
		}
	}
	if !tracker.Track(42, later.Add(400*time.Millisecond)) {
		t.Fatal("четвёртое сообщение новой серии — спам")
	}
}

func TestSpamTrackerIndependentUsers(t *testing.T) {
	tracker := NewSpamTracker()
	defer tracker.Close()

	now := time.Now()

	// Спам одного пользователя не задевает другого
	for i := 0; i < 4; i++ {
		tracker.Track(1, now.Add(time.Duration(i)*50*time.Millisecond))
	}
	if tracker.Track(2, now.Add(200*time.Millisecond)) {
		t.Fatal("первое сообщение другого пользователя не спам")
	}
}

func TestSpamTrackerEvictStale(t *testing.T) {
	tracker := NewSpamTracker()
	defer tracker.Close()

	now := time.Now()
	tracker.Track(1, now)
	tracker.Track(2, now.Add(-20*time.Minute))

	tracker.evictStale(now)

	if tracker.Len() != 1 {
		t.Fatalf("после очистки должна остаться одна запись, осталось %d", tracker.Len())
	}
}
