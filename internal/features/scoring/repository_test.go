package scoring

import "testing"

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name       string
		total, exp int64
		delta      int64
		wantTotal  int64
		wantExp    int64
		wantLevel  int64
	}{
		{"положительная дельта", 10, 10, 5, 15, 15, 1},
		{"штраф", 10, 10, -3, 7, 10, 1},
		{"штраф больше суммы — клампим в 0", 10, 10, -50, 0, 10, 1},
		{"опыт не меняется на штрафе", 0, 150, -5, 0, 150, 2},
		{"нулевая дельта", 10, 10, 0, 10, 10, 1},
		{"переход уровня", 0, 99, 1, 1, 100, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			total, exp, level := applyDelta(c.total, c.exp, c.delta)
			if total != c.wantTotal || exp != c.wantExp || level != c.wantLevel {
				t.Errorf("applyDelta(%d, %d, %d) = (%d, %d, %d), ожидалось (%d, %d, %d)",
					c.total, c.exp, c.delta, total, exp, level,
					c.wantTotal, c.wantExp, c.wantLevel)
			}
		})
	}
}

// +P, затем −P: сумма возвращается (и клампится в 0), опыт сохраняет +P.
func TestApplyDeltaRoundTripKeepsExperience(t *testing.T) {
	total, exp, _ := applyDelta(0, 0, 25)
	total, exp, _ = applyDelta(total, exp, -25)

	if total != 0 {
		t.Errorf("сумма = %d, ожидалось 0", total)
	}
	if exp != 25 {
		t.Errorf("опыт = %d, ожидалось 25", exp)
	}
}
