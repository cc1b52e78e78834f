// Package scoring — level.go содержит чистую функцию уровня.
// Уровень производен от опыта: level = floor(sqrt(exp / 100)) + 1.
package scoring

import "math"

// CalculateLevel возвращает уровень для заданного опыта.
// Для любого опыта ≥ 0 уровень ≥ 1. Отрицательный опыт (не должен
// возникать) трактуется как 0.
//
// Примеры:
//
//	CalculateLevel(0)   → 1
//	CalculateLevel(99)  → 1
//	CalculateLevel(100) → 2
//	CalculateLevel(900) → 4
func CalculateLevel(experience int64) int64 {
	if experience < 0 {
		experience = 0
	}
	return int64(math.Floor(math.Sqrt(float64(experience)/100.0))) + 1
}

// ExpForLevel возвращает порог опыта для достижения уровня: level² × 100.
// Для уровня ≤ 0 возвращает 0 (нужен для прогресса с первого уровня).
func ExpForLevel(level int64) int64 {
	if level <= 0 {
		return 0
	}
	return level * level * 100
}

// LevelProgress возвращает прогресс к следующему уровню:
// сколько опыта набрано внутри текущего уровня и сколько всего нужно.
func LevelProgress(experience int64) (have, need int64) {
	level := CalculateLevel(experience)
	floor := ExpForLevel(level - 1)
	ceil := ExpForLevel(level)
	return experience - floor, ceil - floor
}
