// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт пулы БД и Redis, репозитории, сервисы,
// обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/bot"
	"citizen-bot/internal/cache"
	"citizen-bot/internal/config"
	"citizen-bot/internal/db/postgres"
	"citizen-bot/internal/db/redis"
	"citizen-bot/internal/features/admin"
	"citizen-bot/internal/features/badges"
	"citizen-bot/internal/features/ranking"
	"citizen-bot/internal/features/scoring"
	"citizen-bot/internal/features/users"
	"citizen-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Redis     *goredis.Client

	scoringService *scoring.Service
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Redis (кеш авторов для реакций) ===
	rdb, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	authors := cache.NewAuthorCache(rdb)

	// === 3. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken,
		telego.WithDefaultLogger(cfg.AppEnv == "development", true))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}

	me, err := api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка авторизации бота: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)

	// === 4. Репозитории ===
	userRepo := users.NewRepository(pool)
	scoringRepo := scoring.NewRepository(pool)
	badgeRepo := badges.NewRepository(pool)
	rankingRepo := ranking.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 5. Сервисы ===
	userService := users.NewService(userRepo)
	scoringService := scoring.NewService(scoringRepo, userRepo, cfg)
	badgeService := badges.NewService(badgeRepo, userRepo)
	rankingService := ranking.NewService(rankingRepo, badgeRepo)
	adminService := admin.NewService(adminRepo, cfg)

	// Стандартный каталог бейджей (идемпотентно)
	if err := badgeService.InitializeDefaultBadges(ctx); err != nil {
		return nil, fmt.Errorf("ошибка загрузки каталога бейджей: %w", err)
	}

	// === 6. Обработчики ===
	adminHandler := admin.NewHandler(adminService, scoringService, userService, badgeService, cfg, api)

	// === 7. Собираем бота ===
	b := bot.New(api, cfg, authors, userService, scoringService, badgeService, rankingService, adminHandler)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(rankingService, adminService, b)

	return &App{
		Bot:            b,
		Scheduler:      scheduler,
		DB:             pool,
		Redis:          rdb,
		scoringService: scoringService,
	}, nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.Bot.Close()
	a.scoringService.Close()
	if err := a.Redis.Close(); err != nil {
		log.WithError(err).Warn("Ошибка закрытия Redis")
	}
	a.DB.Close()
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002PointHistory},
		{3, migration003Badges},
		{4, migration004Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    display_name VARCHAR(255) NOT NULL DEFAULT '',
    total_points BIGINT NOT NULL DEFAULT 0,
    experience BIGINT NOT NULL DEFAULT 0,
    level BIGINT NOT NULL DEFAULT 1,
    messages_count BIGINT NOT NULL DEFAULT 0,
    voice_minutes BIGINT NOT NULL DEFAULT 0,
    reactions_given BIGINT NOT NULL DEFAULT 0,
    reactions_received BIGINT NOT NULL DEFAULT 0,
    reports_received BIGINT NOT NULL DEFAULT 0,
    last_active TIMESTAMP NOT NULL DEFAULT NOW(),
    joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_user_id ON users(user_id);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_users_total_points ON users(total_points DESC);
`

var migration002PointHistory = `
CREATE TABLE IF NOT EXISTS point_history (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    points BIGINT NOT NULL,
    reason TEXT NOT NULL,
    category VARCHAR(50) NOT NULL,
    admin_id BIGINT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_history_user_id ON point_history(user_id);
CREATE INDEX IF NOT EXISTS idx_point_history_created_at ON point_history(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_point_history_user_created ON point_history(user_id, created_at DESC);
`

var migration003Badges = `
CREATE TABLE IF NOT EXISTS badges (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) UNIQUE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    icon VARCHAR(16) NOT NULL DEFAULT '',
    rarity VARCHAR(20) NOT NULL DEFAULT 'COMMON',
    requirement JSONB NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_badges (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    badge_id BIGINT NOT NULL REFERENCES badges(id),
    earned_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, badge_id)
);
CREATE INDEX IF NOT EXISTS idx_user_badges_user_id ON user_badges(user_id);
`

var migration004Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL,
    last_activity TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMP NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user ON admin_login_attempts(user_id, attempt_time DESC);
`
