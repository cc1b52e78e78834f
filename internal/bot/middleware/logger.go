// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// LogMessage логирует входящее сообщение.
// Текст обрезается до 50 символов (рун, а не байт — кириллица).
func LogMessage(message *telego.Message) {
	if message == nil || message.From == nil {
		return
	}

	text := message.Text
	if text == "" {
		text = message.Caption
	}
	if runes := []rune(text); len(runes) > 50 {
		text = string(runes[:50]) + "..."
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.Username,
		"text":     text,
	}).Debug("Входящее сообщение")
}

// LogReaction логирует входящую реакцию.
func LogReaction(reaction *telego.MessageReactionUpdated) {
	if reaction == nil || reaction.User == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":    reaction.User.ID,
		"chat_id":    reaction.Chat.ID,
		"message_id": reaction.MessageID,
		"reactions":  len(reaction.NewReaction),
	}).Debug("Входящая реакция")
}
