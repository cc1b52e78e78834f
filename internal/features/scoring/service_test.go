package scoring

import (
	"context"
	"strings"
	"testing"

	"citizen-bot/internal/config"
)

// --- Фейки ---

type awardCall struct {
	userID   int64
	delta    int64
	category Category
	adminID  *int64
}

type fakeLedger struct {
	awards  []awardCall
	history []*PointHistory
}

func (f *fakeLedger) Award(_ context.Context, userID, delta int64, _ string, category Category, adminID *int64) error {
	f.awards = append(f.awards, awardCall{userID: userID, delta: delta, category: category, adminID: adminID})
	return nil
}

func (f *fakeLedger) History(_ context.Context, _ int64, _ int) ([]*PointHistory, error) {
	return f.history, nil
}

func (f *fakeLedger) LedgerStats(_ context.Context) (int64, int64, error) {
	return int64(len(f.awards)), 0, nil
}

type fakeCounters struct {
	messages          map[int64]int64
	voiceMinutes      map[int64]int64
	reactionsGiven    map[int64]int64
	reactionsReceived map[int64]int64
	ensured           map[int64]bool
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{
		messages:          make(map[int64]int64),
		voiceMinutes:      make(map[int64]int64),
		reactionsGiven:    make(map[int64]int64),
		reactionsReceived: make(map[int64]int64),
		ensured:           make(map[int64]bool),
	}
}

func (f *fakeCounters) Ensure(_ context.Context, userID int64, _, _ string) error {
	f.ensured[userID] = true
	return nil
}

func (f *fakeCounters) IncrementMessages(_ context.Context, userID int64) error {
	f.messages[userID]++
	return nil
}

func (f *fakeCounters) IncrementVoiceMinutes(_ context.Context, userID int64, minutes int64) error {
	f.voiceMinutes[userID] += minutes
	return nil
}

func (f *fakeCounters) IncrementReactionsGiven(_ context.Context, userID int64) error {
	f.reactionsGiven[userID]++
	return nil
}

func (f *fakeCounters) IncrementReactionsReceived(_ context.Context, userID int64) (int64, error) {
	f.reactionsReceived[userID]++
	return f.reactionsReceived[userID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		BaseMessagePoints:        1,
		QualityMessageMultiplier: 2,
		ReactionBonusThreshold:   3,
		VoicePointsPerMinute:     0.5,
		SpamPenalty:              -5,
	}
}

func newTestService() (*Service, *fakeLedger, *fakeCounters) {
	ledger := &fakeLedger{}
	counters := newFakeCounters()
	svc := NewService(ledger, counters, testConfig())
	return svc, ledger, counters
}

// --- Тесты ---

func TestProcessMessageNormal(t *testing.T) {
	svc, ledger, counters := newTestService()
	defer svc.Close()

	if err := svc.ProcessMessage(context.Background(), 1, "привет", false, false); err != nil {
		t.Fatal(err)
	}

	if len(ledger.awards) != 1 {
		t.Fatalf("ожидалось одно начисление, получено %d", len(ledger.awards))
	}
	a := ledger.awards[0]
	if a.delta != 1 || a.category != CategoryMessage {
		t.Errorf("начисление = (%d, %s), ожидалось (1, %s)", a.delta, a.category, CategoryMessage)
	}
	if counters.messages[1] != 1 {
		t.Error("счётчик сообщений не увеличен")
	}
}

func TestProcessMessageQuality(t *testing.T) {
	svc, ledger, _ := newTestService()
	defer svc.Close()

	long := strings.Repeat("подробный разбор ", 15)
	if err := svc.ProcessMessage(context.Background(), 1, long, false, false); err != nil {
		t.Fatal(err)
	}

	a := ledger.awards[0]
	if a.delta != 2 || a.category != CategoryQualityMessage {
		t.Errorf("начисление = (%d, %s), ожидалось (2, %s)", a.delta, a.category, CategoryQualityMessage)
	}
}

func TestProcessMessageSpam(t *testing.T) {
	svc, ledger, counters := newTestService()
	defer svc.Close()

	// Четыре сообщения подряд: последовательные вызовы в памяти укладываются
	// в спам-окно без инъекции времени
	for i := 0; i < 4; i++ {
		if err := svc.ProcessMessage(context.Background(), 1, "спам", false, false); err != nil {
			t.Fatal(err)
		}
	}

	last := ledger.awards[len(ledger.awards)-1]
	if last.delta != -5 || last.category != CategorySpamPenalty {
		t.Errorf("последнее начисление = (%d, %s), ожидалось (-5, %s)",
			last.delta, last.category, CategorySpamPenalty)
	}
	// Спам-сообщение не увеличивает счётчик сообщений
	if counters.messages[1] != 3 {
		t.Errorf("счётчик сообщений = %d, ожидалось 3", counters.messages[1])
	}
}

func TestProcessReactionSelf(t *testing.T) {
	svc, ledger, counters := newTestService()
	defer svc.Close()

	if err := svc.ProcessReaction(context.Background(), 1, 1); err != nil {
		t.Fatal(err)
	}

	if len(ledger.awards) != 0 || len(counters.reactionsGiven) != 0 {
		t.Error("реакция на собственное сообщение не должна ничего менять")
	}
}

func TestProcessReactionBelowThreshold(t *testing.T) {
	svc, ledger, counters := newTestService()
	defer svc.Close()

	// Две реакции: порог 3 не достигнут, бонуса нет
	for reactor := int64(2); reactor <= 3; reactor++ {
		if err := svc.ProcessReaction(context.Background(), 1, reactor); err != nil {
			t.Fatal(err)
		}
	}

	if len(ledger.awards) != 0 {
		t.Error("до порога бонус не начисляется")
	}
	if counters.reactionsReceived[1] != 2 {
		t.Errorf("получено реакций = %d, ожидалось 2", counters.reactionsReceived[1])
	}
}

func TestProcessReactionBonusAtThreshold(t *testing.T) {
	svc, ledger, _ := newTestService()
	defer svc.Close()

	for reactor := int64(2); reactor <= 4; reactor++ {
		if err := svc.ProcessReaction(context.Background(), 1, reactor); err != nil {
			t.Fatal(err)
		}
	}

	// Третья реакция достигает порога — один бонус
	if len(ledger.awards) != 1 {
		t.Fatalf("ожидался один бонус, получено %d начислений", len(ledger.awards))
	}
	a := ledger.awards[0]
	if a.userID != 1 || a.delta != 2 || a.category != CategoryReactionBonus {
		t.Errorf("бонус = (%d, %d, %s), ожидалось (1, 2, %s)",
			a.userID, a.delta, a.category, CategoryReactionBonus)
	}

	// Каждая реакция после порога даёт ещё один бонус
	if err := svc.ProcessReaction(context.Background(), 1, 5); err != nil {
		t.Fatal(err)
	}
	if len(ledger.awards) != 2 {
		t.Error("реакция после порога тоже должна давать бонус")
	}
}

func TestProcessVoiceActivity(t *testing.T) {
	svc, ledger, counters := newTestService()
	defer svc.Close()

	// 1 минута × 0.5 = 0.5 → floor 0: ни начисления, ни минут
	if err := svc.ProcessVoiceActivity(context.Background(), 1, 1); err != nil {
		t.Fatal(err)
	}
	if len(ledger.awards) != 0 || counters.voiceMinutes[1] != 0 {
		t.Error("при нуле очков не должно быть ни начисления, ни минут")
	}

	// 5 минут × 0.5 = 2.5 → floor 2
	if err := svc.ProcessVoiceActivity(context.Background(), 1, 5); err != nil {
		t.Fatal(err)
	}
	if len(ledger.awards) != 1 || ledger.awards[0].delta != 2 {
		t.Fatalf("ожидалось начисление 2 очков, получено %+v", ledger.awards)
	}
	if counters.voiceMinutes[1] != 5 {
		t.Errorf("минуты = %d, ожидалось 5", counters.voiceMinutes[1])
	}
}

func TestPenalizeUserAlwaysNegative(t *testing.T) {
	svc, ledger, _ := newTestService()
	defer svc.Close()

	// Знак входа не важен — дельта всегда отрицательная
	if err := svc.PenalizeUser(context.Background(), 1, 10, "тест", CategoryReportPenalty, nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.PenalizeUser(context.Background(), 1, -10, "тест", CategoryReportPenalty, nil); err != nil {
		t.Fatal(err)
	}

	for _, a := range ledger.awards {
		if a.delta != -10 {
			t.Errorf("дельта штрафа = %d, ожидалось -10", a.delta)
		}
	}
}
