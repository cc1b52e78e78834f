// Package scoring — classifier.go определяет «качественные» сообщения.
// Качественное сообщение приносит больше очков (base × multiplier).
package scoring

import (
	"strings"
	"unicode/utf8"
)

// Пороги качественного сообщения.
const (
	qualityMinRunes = 100 // Длиннее 100 символов
	qualityMinWords = 20  // Или больше 20 слов
)

// IsQualityMessage проверяет, является ли сообщение «качественным».
// Достаточно любого из условий:
//   - длина текста (без краевых пробелов) больше 100 символов;
//   - есть вложение (документ, фото, видео, аудио);
//   - есть встроенная ссылка (embed);
//   - текст содержит "http";
//   - больше 20 слов.
func IsQualityMessage(content string, hasAttachment, hasEmbed bool) bool {
	trimmed := strings.TrimSpace(content)

	if utf8.RuneCountInString(trimmed) > qualityMinRunes {
		return true
	}
	if hasAttachment || hasEmbed {
		return true
	}
	if strings.Contains(trimmed, "http") {
		return true
	}
	return len(strings.Fields(trimmed)) > qualityMinWords
}
