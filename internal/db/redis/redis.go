// Package redis управляет подключением к Redis.
// Redis используется как кеш авторов сообщений: апдейт с реакцией
// в Telegram не содержит автора сообщения, поэтому авторов запоминаем
// в момент получения самого сообщения.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/config"
)

// NewClient создаёт клиент Redis и проверяет соединение.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis недоступен: %w", err)
	}

	log.Info("Подключение к Redis установлено")
	return rdb, nil
}
