// Package cache — кеш «сообщение → автор» поверх Redis.
// Telegram присылает message_reaction без информации об авторе сообщения,
// поэтому автор запоминается при получении самого сообщения и
// достаётся из кеша при обработке реакции.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL записи об авторе. Реакции на более старые сообщения не засчитываются —
// осознанный компромисс, чтобы кеш не рос бесконечно.
const authorTTL = 48 * time.Hour

// AuthorCache хранит соответствие (chat_id, message_id) → author_id.
type AuthorCache struct {
	rdb *redis.Client
}

// NewAuthorCache создаёт кеш авторов.
func NewAuthorCache(rdb *redis.Client) *AuthorCache {
	return &AuthorCache{rdb: rdb}
}

func authorKey(chatID int64, messageID int) string {
	return fmt.Sprintf("msg_author:%d:%d", chatID, messageID)
}

// Remember сохраняет автора сообщения.
func (c *AuthorCache) Remember(ctx context.Context, chatID int64, messageID int, authorID int64) error {
	return c.rdb.Set(ctx, authorKey(chatID, messageID), authorID, authorTTL).Err()
}

// Lookup возвращает автора сообщения.
// Если записи нет (сообщение старое или пришло до запуска бота) — ok=false.
func (c *AuthorCache) Lookup(ctx context.Context, chatID int64, messageID int) (int64, bool, error) {
	val, err := c.rdb.Get(ctx, authorKey(chatID, messageID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка чтения кеша авторов: %w", err)
	}

	authorID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("повреждённая запись кеша авторов: %w", err)
	}
	return authorID, true, nil
}
