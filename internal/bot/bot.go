// Package bot содержит главный модуль бота — приём апдейтов, маршрутизацию
// и пользовательские команды. bot.go держит цикл long polling и роутинг.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/bot/middleware"
	"citizen-bot/internal/cache"
	"citizen-bot/internal/config"
	"citizen-bot/internal/features/admin"
	"citizen-bot/internal/features/badges"
	"citizen-bot/internal/features/ranking"
	"citizen-bot/internal/features/scoring"
	"citizen-bot/internal/features/users"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	rateLimiter *middleware.RateLimiter
	authors     *cache.AuthorCache
	voice       *VoiceTracker

	userService    *users.Service
	scoringService *scoring.Service
	badgeService   *badges.Service
	rankingService *ranking.Service

	adminHandler *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *telego.Bot,
	cfg *config.Config,
	authors *cache.AuthorCache,
	userService *users.Service,
	scoringService *scoring.Service,
	badgeService *badges.Service,
	rankingService *ranking.Service,
	adminHandler *admin.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:            api,
		cfg:            cfg,
		rateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		authors:        authors,
		voice:          NewVoiceTracker(),
		userService:    userService,
		scoringService: scoringService,
		badgeService:   badgeService,
		rankingService: rankingService,
		adminHandler:   adminHandler,
		parser:         NewCommandParser(),
		inflight:       make(chan struct{}, maxInFlight),
	}
}

// Start запускает long polling и блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: b.cfg.BotUpdateTimeoutSeconds,
		// message_reaction не входит в дефолтный набор — его надо просить явно
		AllowedUpdates: []string{"message", "message_reaction"},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает апдейты...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал апдейтов закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd telego.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// Close останавливает фоновые горутины бота.
func (b *Bot) Close() {
	b.rateLimiter.Close()
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic()

	switch {
	case update.MessageReaction != nil:
		b.handleReaction(ctx, update.MessageReaction)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение или сервисное событие.
func (b *Bot) handleMessage(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID

	// Сервисные события видеочата (только основной чат)
	if chatID == b.cfg.FloodChatID && b.handleVideoChatEvent(ctx, message) {
		return
	}

	// Новые участники
	if len(message.NewChatMembers) > 0 {
		if chatID == b.cfg.FloodChatID {
			b.handleNewMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.From == nil {
		return
	}

	middleware.LogMessage(message)

	// Доступ: основной чат или личка
	isPrivate := message.Chat.Type == telego.ChatTypePrivate
	if chatID != b.cfg.FloodChatID && !isPrivate {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	userID := message.From.ID
	displayName := strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)

	// Ошибки регистрации нельзя глотать молча — дальше всё ляжет на них
	if err := b.userService.EnsureExists(ctx, userID, message.From.Username, displayName); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureExists failed")
	}

	text := message.Text
	if text == "" {
		text = message.Caption
	}

	// В личке — сначала админ-команды
	if isPrivate {
		if b.adminHandler.HandleAdminMessage(ctx, chatID, userID, text) {
			return
		}
	}

	// Запоминаем автора для будущих реакций (только основной чат)
	if chatID == b.cfg.FloodChatID {
		if err := b.authors.Remember(ctx, chatID, message.MessageID, userID); err != nil {
			log.WithError(err).Debug("Кеш авторов недоступен")
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(text)
	if isCommand {
		b.routeCommand(ctx, chatID, userID, cmd, args)
		return
	}

	if isPrivate {
		// Не команда в личке — подсказываем
		b.sendMessage(ctx, chatID, b.helpText())
		return
	}

	// Обычное сообщение в основном чате — начисляем очки
	if err := b.scoringService.ProcessMessage(ctx, userID, text, hasAttachment(message), hasEmbed(message)); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка обработки сообщения")
		return
	}

	b.checkBadges(ctx, userID)
}

// handleReaction обрабатывает добавление реакции в основном чате.
func (b *Bot) handleReaction(ctx context.Context, reaction *telego.MessageReactionUpdated) {
	if reaction.Chat.ID != b.cfg.FloodChatID || reaction.User == nil {
		return
	}

	// Снятие реакции очков не отнимает
	if len(reaction.NewReaction) <= len(reaction.OldReaction) {
		return
	}

	middleware.LogReaction(reaction)

	authorID, ok, err := b.authors.Lookup(ctx, reaction.Chat.ID, reaction.MessageID)
	if err != nil {
		log.WithError(err).Error("Ошибка кеша авторов")
		return
	}
	if !ok {
		// Сообщение старше TTL кеша или пришло до запуска бота
		log.WithField("message_id", reaction.MessageID).Debug("Автор сообщения неизвестен, реакция пропущена")
		return
	}

	if err := b.scoringService.ProcessReaction(ctx, authorID, reaction.User.ID); err != nil {
		log.WithError(err).WithField("author_id", authorID).Error("Ошибка обработки реакции")
		return
	}

	b.checkBadges(ctx, authorID)
}

// handleVideoChatEvent обрабатывает сервисные сообщения видеочата.
// Возвращает true, если сообщение было событием видеочата.
func (b *Bot) handleVideoChatEvent(ctx context.Context, message *telego.Message) bool {
	now := time.Now().UTC()

	switch {
	case message.VideoChatStarted != nil:
		if message.From != nil {
			b.voice.Join(message.From.ID, now)
		}
		return true

	case message.VideoChatParticipantsInvited != nil:
		for _, u := range message.VideoChatParticipantsInvited.Users {
			b.voice.Join(u.ID, now)
		}
		return true

	case message.VideoChatEnded != nil:
		for userID, minutes := range b.voice.CloseAll(now) {
			if err := b.userService.EnsureExists(ctx, userID, "", ""); err != nil {
				log.WithError(err).WithField("user_id", userID).Warn("EnsureExists failed")
				continue
			}
			if err := b.scoringService.ProcessVoiceActivity(ctx, userID, minutes); err != nil {
				log.WithError(err).WithField("user_id", userID).Error("Ошибка начисления за видеочат")
				continue
			}
			b.checkBadges(ctx, userID)
		}
		return true
	}

	return false
}

// handleNewMembers регистрирует вступивших участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []telego.User) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}
		displayName := strings.TrimSpace(user.FirstName + " " + user.LastName)
		if err := b.userService.EnsureExists(ctx, user.ID, user.Username, displayName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("EnsureExists failed")
			continue
		}
		log.WithField("user", user.Username).Info("Новый участник зарегистрирован")
	}
}

// checkBadges проверяет бейджи участника и поздравляет в основном чате.
func (b *Bot) checkBadges(ctx context.Context, userID int64) {
	awarded, err := b.badgeService.CheckAndAwardBadges(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка проверки бейджей")
		return
	}
	if len(awarded) == 0 {
		return
	}

	b.congratulate(ctx, userID, awarded)
}

// routeCommand маршрутизирует пользовательскую команду.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(ctx, chatID, b.helpText())

	case "профиль", "profile":
		b.handleProfile(ctx, chatID, userID)

	case "топ", "top":
		b.handleTop(ctx, chatID, args)

	case "ранг", "rank":
		b.handleRank(ctx, chatID, userID)

	case "бейджи", "badges":
		b.handleBadges(ctx, chatID, userID)

	case "история", "history":
		b.handleHistory(ctx, chatID, userID)
	}
}

// hasAttachment — есть ли у сообщения вложение любого типа.
func hasAttachment(m *telego.Message) bool {
	return len(m.Photo) > 0 || m.Document != nil || m.Video != nil ||
		m.Audio != nil || m.Voice != nil || m.VideoNote != nil ||
		m.Animation != nil || m.Sticker != nil
}

// hasEmbed — несёт ли сообщение ссылку (entity или превью).
func hasEmbed(m *telego.Message) bool {
	if m.LinkPreviewOptions != nil {
		return true
	}
	for _, e := range append(m.Entities, m.CaptionEntities...) {
		if e.Type == telego.EntityTypeURL || e.Type == telego.EntityTypeTextLink {
			return true
		}
	}
	return false
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return "", nil, false
	}

	// Срезаем @botname из команд вида /профиль@citizen_bot
	command := strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
