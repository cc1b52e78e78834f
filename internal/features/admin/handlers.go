// Package admin — handlers.go обрабатывает админ-команды в личных сообщениях.
// Поток: /login <пароль> → сессия на 24 часа → текстовые команды.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/common"
	"citizen-bot/internal/config"
	"citizen-bot/internal/features/badges"
	"citizen-bot/internal/features/scoring"
	"citizen-bot/internal/features/users"
)

const adminHelpText = `Команды администратора:
/login <пароль> — авторизация
/logout — закрыть сессию
начислить @user <очки> [причина] — ручная корректировка
штраф @user <спам|призрак|репорт|слив> — штраф по категории
бейдж @user <имя бейджа> — выдать бейдж вручную
история @user [N] — последние записи журнала
статистика — сводка по боту`

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	scoring *scoring.Service
	users   *users.Service
	badges  *badges.Service
	cfg     *config.Config
	bot     *telego.Bot
}

// NewHandler создаёт обработчик админ-команд.
func NewHandler(service *Service, scoringSvc *scoring.Service, usersSvc *users.Service, badgesSvc *badges.Service, cfg *config.Config, bot *telego.Bot) *Handler {
	return &Handler{
		service: service,
		scoring: scoringSvc,
		users:   usersSvc,
		badges:  badgesSvc,
		cfg:     cfg,
		bot:     bot,
	}
}

// HandleAdminMessage обрабатывает сообщение в личке бота.
// Возвращает true, если сообщение распознано как админ-команда.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID, userID int64, text string) bool {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}

	// /login доступен без сессии
	if fields[0] == "/login" {
		h.handleLogin(ctx, chatID, userID, fields)
		return true
	}

	command := strings.ToLower(fields[0])
	switch command {
	case "/logout", "начислить", "штраф", "бейдж", "история", "статистика":
	default:
		return false
	}

	if !h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(ctx, chatID, "🔐 Нужна авторизация: /login <пароль>")
		return true
	}

	switch command {
	case "/logout":
		if err := h.service.Logout(ctx, userID); err != nil {
			h.sendError(ctx, chatID, err)
			return true
		}
		h.sendMessage(ctx, chatID, "Сессия закрыта")
	case "начислить":
		h.handleAdjust(ctx, chatID, userID, fields)
	case "штраф":
		h.handlePenalty(ctx, chatID, userID, fields)
	case "бейдж":
		h.handleBadge(ctx, chatID, userID, fields)
	case "история":
		h.handleHistory(ctx, chatID, fields)
	case "статистика":
		h.handleStats(ctx, chatID)
	}
	return true
}

// HelpText возвращает справку по админ-командам.
func (h *Handler) HelpText() string {
	return adminHelpText
}

func (h *Handler) handleLogin(ctx context.Context, chatID, userID int64, fields []string) {
	if len(fields) < 2 {
		h.sendMessage(ctx, chatID, "Использование: /login <пароль>")
		return
	}

	if err := h.service.Login(ctx, userID, strings.Join(fields[1:], " ")); err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.sendMessage(ctx, chatID, "✅ Авторизация успешна, сессия открыта на 24 часа\n\n"+adminHelpText)
}

// handleAdjust — «начислить @user <очки> [причина]».
// Очки могут быть отрицательными: это единая команда корректировки.
func (h *Handler) handleAdjust(ctx context.Context, chatID, adminID int64, fields []string) {
	if len(fields) < 3 {
		h.sendMessage(ctx, chatID, "Использование: начислить @user <очки> [причина]")
		return
	}

	target, err := h.resolveTarget(ctx, fields[1])
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	delta, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || delta == 0 {
		h.sendMessage(ctx, chatID, "❌ Очки должны быть ненулевым числом")
		return
	}

	reason := "Корректировка администратором"
	if len(fields) > 3 {
		reason = strings.Join(fields[3:], " ")
	}

	if err := h.scoring.AwardPoints(ctx, target.UserID, delta, reason, scoring.CategoryAdminAdjustment, &adminID); err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	h.sendMessage(ctx, chatID, fmt.Sprintf("✅ %s: %+d %s (%s)",
		target.Display(), delta, common.PluralizePoints(delta), reason))
}

// handlePenalty — «штраф @user <тип>». Размеры штрафов берутся из конфига.
func (h *Handler) handlePenalty(ctx context.Context, chatID, adminID int64, fields []string) {
	if len(fields) < 3 {
		h.sendMessage(ctx, chatID, "Использование: штраф @user <спам|призрак|репорт|слив>")
		return
	}

	target, err := h.resolveTarget(ctx, fields[1])
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	var penalty int64
	var category scoring.Category
	var reason string
	switch strings.ToLower(fields[2]) {
	case "спам":
		penalty, category, reason = h.cfg.SpamPenalty, scoring.CategorySpamPenalty, "Спам (решение администратора)"
	case "призрак":
		penalty, category, reason = h.cfg.GhostVoicePenalty, scoring.CategoryGhostVoicePenalty, "Призрак в голосовом чате"
	case "репорт":
		penalty, category, reason = h.cfg.ReportPenalty, scoring.CategoryReportPenalty, "Подтверждённая жалоба"
	case "слив":
		penalty, category, reason = h.cfg.LeakPenalty, scoring.CategoryLeakPenalty, "Слив приватной информации"
	default:
		h.sendMessage(ctx, chatID, "❌ Неизвестный тип штрафа: спам, призрак, репорт или слив")
		return
	}

	if err := h.scoring.PenalizeUser(ctx, target.UserID, penalty, reason, category, &adminID); err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	// Жалоба дополнительно увеличивает счётчик репортов участника
	if category == scoring.CategoryReportPenalty {
		if err := h.users.IncrementReportsReceived(ctx, target.UserID); err != nil {
			log.WithError(err).WithField("user_id", target.UserID).Warn("Счётчик жалоб не обновлён")
		}
	}

	h.sendMessage(ctx, chatID, fmt.Sprintf("✅ Штраф применён: %s, %s", target.Display(), reason))
}

// handleBadge — «бейдж @user <имя бейджа>». Имя бейджа может содержать пробелы.
func (h *Handler) handleBadge(ctx context.Context, chatID, adminID int64, fields []string) {
	if len(fields) < 3 {
		h.sendMessage(ctx, chatID, "Использование: бейдж @user <имя бейджа>")
		return
	}

	target, err := h.resolveTarget(ctx, fields[1])
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	name := strings.Join(fields[2:], " ")
	created, err := h.badges.AwardByName(ctx, target.UserID, name, adminID)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	if !created {
		h.sendMessage(ctx, chatID, fmt.Sprintf("У %s уже есть бейдж «%s»", target.Display(), name))
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("✅ Бейдж «%s» выдан: %s", name, target.Display()))
}

// handleHistory — «история @user [N]», по умолчанию 10 записей.
func (h *Handler) handleHistory(ctx context.Context, chatID int64, fields []string) {
	if len(fields) < 2 {
		h.sendMessage(ctx, chatID, "Использование: история @user [N]")
		return
	}

	target, err := h.resolveTarget(ctx, fields[1])
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	limit := 10
	if len(fields) > 2 {
		if n, err := strconv.Atoi(fields[2]); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	entries, err := h.scoring.GetHistory(ctx, target.UserID, limit)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	if len(entries) == 0 {
		h.sendMessage(ctx, chatID, fmt.Sprintf("У %s пока нет записей в журнале", target.Display()))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📜 Журнал %s:\n\n", target.Display()))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %+d  %s (%s)\n",
			common.FormatDateTime(e.CreatedAt), e.Points, e.Reason, e.Category))
	}
	h.sendMessage(ctx, chatID, sb.String())
}

// handleStats — «статистика»: участники и сводка журнала.
func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	total, err := h.users.CountUsers(ctx)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	entries, awarded, err := h.scoring.GetLedgerStats(ctx)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	h.sendMessage(ctx, chatID, fmt.Sprintf(
		"📊 Статистика бота:\n\nУчастников: %d\nЗаписей в журнале: %d\nНачислено всего: %s",
		total, entries, common.FormatPoints(awarded)))
}

// resolveTarget находит участника по @username или числовому ID.
func (h *Handler) resolveTarget(ctx context.Context, token string) (*users.User, error) {
	token = strings.TrimPrefix(token, "@")
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		return h.users.GetByUserID(ctx, id)
	}
	return h.users.GetByUsername(ctx, token)
}

func (h *Handler) sendError(ctx context.Context, chatID int64, err error) {
	log.WithError(err).Warn("Админ-команда завершилась ошибкой")
	h.sendMessage(ctx, chatID, fmt.Sprintf("❌ %s", userFacingError(err)))
}

// userFacingError возвращает текст ошибки для администратора: известные
// ошибки показываем как есть, внутренние — общей фразой без деталей
// (подробности остаются в логе).
func userFacingError(err error) string {
	for _, known := range []error{
		common.ErrUserNotFound,
		common.ErrBadgeNotFound,
		common.ErrWrongPassword,
		common.ErrTooManyAttempts,
		common.ErrSessionExpired,
		common.ErrNotAdmin,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "команда не выполнена, подробности в журнале бота"
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := h.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
