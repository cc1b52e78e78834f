// Package scoring — spam.go отслеживает флуд: серии сообщений от одного
// пользователя с интервалом меньше секунды. Состояние процесс-локальное
// и совещательное: гонка может дать ложный результат, но не порчу данных.
package scoring

import (
	"sync"
	"time"
)

const (
	// Интервал, внутри которого сообщения считаются серией
	spamWindow = 1000 * time.Millisecond
	// Больше стольких сообщений подряд в серии — спам
	spamBurstLimit = 3

	// Параметры фоновой очистки: записи старше stale выбрасываются,
	// иначе карта растёт с каждым новым пользователем бесконечно
	sweepInterval = 5 * time.Minute
	sweepStale    = 10 * time.Minute
)

type spamEntry struct {
	count int
	last  time.Time
}

// SpamTracker хранит пер-пользовательские окна частоты сообщений.
// Принадлежит сервису начислений; защищён мьютексом, фоновая горутина
// периодически выметает устаревшие записи.
type SpamTracker struct {
	mu      sync.Mutex
	entries map[int64]*spamEntry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSpamTracker создаёт трекер и запускает фоновую очистку.
func NewSpamTracker() *SpamTracker {
	t := &SpamTracker{
		entries: make(map[int64]*spamEntry),
		stopCh:  make(chan struct{}),
	}
	go t.sweep()
	return t
}

// Close останавливает фоновую горутину очистки.
// Его надо вызывать на shutdown (иначе sweep будет жить вечно).
func (t *SpamTracker) Close() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// Track регистрирует сообщение пользователя в момент now и сообщает,
// является ли оно спамом. Если с прошлого сообщения прошло меньше
// секунды — серия растёт, иначе сбрасывается до 1. Спам — серия больше 3.
func (t *SpamTracker) Track(userID int64, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[userID]
	if !ok {
		e = &spamEntry{}
		t.entries[userID] = e
	}

	if now.Sub(e.last) < spamWindow {
		e.count++
	} else {
		e.count = 1
	}
	e.last = now

	return e.count > spamBurstLimit
}

// Len возвращает текущее число отслеживаемых пользователей.
func (t *SpamTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *SpamTracker) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.evictStale(time.Now())
		}
	}
}

// evictStale удаляет записи, по которым давно не было сообщений.
func (t *SpamTracker) evictStale(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for userID, e := range t.entries {
		if now.Sub(e.last) > sweepStale {
			delete(t.entries, userID)
		}
	}
}
