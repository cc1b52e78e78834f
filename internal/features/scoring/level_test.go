package scoring

import "testing"

func TestCalculateLevel(t *testing.T) {
	cases := []struct {
		exp  int64
		want int64
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{9999, 10},
		{10000, 11},
		{-5, 1}, // отрицательный опыт трактуется как 0
	}

	for _, c := range cases {
		if got := CalculateLevel(c.exp); got != c.want {
			t.Errorf("CalculateLevel(%d) = %d, ожидалось %d", c.exp, got, c.want)
		}
	}
}

func TestExpForLevel(t *testing.T) {
	cases := []struct {
		level int64
		want  int64
	}{
		{0, 0},
		{-1, 0},
		{1, 100},
		{2, 400},
		{10, 10000},
	}

	for _, c := range cases {
		if got := ExpForLevel(c.level); got != c.want {
			t.Errorf("ExpForLevel(%d) = %d, ожидалось %d", c.level, got, c.want)
		}
	}
}

// Уровень никогда не убывает с ростом опыта.
func TestLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for exp := int64(1); exp <= 20000; exp += 7 {
		level := CalculateLevel(exp)
		if level < prev {
			t.Fatalf("уровень упал с %d до %d на опыте %d", prev, level, exp)
		}
		prev = level
	}
}

func TestLevelProgress(t *testing.T) {
	// Опыт 150: уровень 2, внутри уровня 50 из 300 (400-100)
	have, need := LevelProgress(150)
	if have != 50 || need != 300 {
		t.Errorf("LevelProgress(150) = (%d, %d), ожидалось (50, 300)", have, need)
	}

	// Нулевой опыт: уровень 1, 0 из 100
	have, need = LevelProgress(0)
	if have != 0 || need != 100 {
		t.Errorf("LevelProgress(0) = (%d, %d), ожидалось (0, 100)", have, need)
	}
}
