package badges

import (
	"testing"
	"time"

	"citizen-bot/internal/features/users"
)

func TestParseRequirement(t *testing.T) {
	req, err := ParseRequirement(`{"type":"messages","threshold":100}`)
	if err != nil {
		t.Fatal(err)
	}
	if req.Type != ReqMessages || req.Threshold != 100 {
		t.Errorf("распарсено %+v", req)
	}

	if _, err := ParseRequirement(`не json`); err == nil {
		t.Error("кривой JSON должен возвращать ошибку")
	}
}

func TestRequirementEncodeRoundTrip(t *testing.T) {
	orig := Requirement{Type: ReqCustom, Condition: CondVeteran}
	raw, err := orig.Encode()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseRequirement(raw)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != orig {
		t.Errorf("после кодирования получено %+v, ожидалось %+v", parsed, orig)
	}
}

func TestMeetsThresholds(t *testing.T) {
	u := &users.User{
		TotalPoints:       1000,
		MessagesCount:     99,
		VoiceMinutes:      60,
		ReactionsReceived: 50,
		Level:             9,
	}
	now := time.Now().UTC()

	cases := []struct {
		name string
		req  Requirement
		want bool
	}{
		{"очки на пороге", Requirement{Type: ReqPoints, Threshold: 1000}, true},
		{"очков не хватает", Requirement{Type: ReqPoints, Threshold: 1001}, false},
		{"сообщений не хватает", Requirement{Type: ReqMessages, Threshold: 100}, false},
		{"минуты на пороге", Requirement{Type: ReqVoice, Threshold: 60}, true},
		{"реакции на пороге", Requirement{Type: ReqReactions, Threshold: 50}, true},
		{"уровня не хватает", Requirement{Type: ReqLevel, Threshold: 10}, false},
		{"неизвестный тип", Requirement{Type: "unknown"}, false},
		{"неизвестное условие", Requirement{Type: ReqCustom, Condition: "unknown"}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.req.Meets(u, now); got != c.want {
				t.Errorf("Meets(%+v) = %v, ожидалось %v", c.req, got, c.want)
			}
		})
	}
}

func TestMeetsVeteran(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	req := Requirement{Type: ReqCustom, Condition: CondVeteran}

	// Шесть календарных месяцев, не 180 дней
	fresh := &users.User{JoinedAt: time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)}
	if req.Meets(fresh, now) {
		t.Error("ровно полгода — ещё не ветеран (граница строгая)")
	}

	veteran := &users.User{JoinedAt: time.Date(2025, 2, 15, 11, 59, 59, 0, time.UTC)}
	if !req.Meets(veteran, now) {
		t.Error("больше полугода — ветеран")
	}
}

// monthly_top никогда не выдаётся проверкой правил — только планировщиком.
func TestMeetsMonthlyTopAlwaysFalse(t *testing.T) {
	req := Requirement{Type: ReqCustom, Condition: CondMonthlyTop}
	u := &users.User{TotalPoints: 1 << 40}
	if req.Meets(u, time.Now().UTC()) {
		t.Error("monthly_top не должен выдаваться проверкой")
	}
}
