// Package bot — handlers.go реализует пользовательские команды:
// профиль, лидерборды, ранги и бейджи.
package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"citizen-bot/internal/common"
	"citizen-bot/internal/features/ranking"
	"citizen-bot/internal/features/scoring"
)

const leaderboardSize = 10

// helpText возвращает справку по командам.
func (b *Bot) helpText() string {
	return `Команды (префиксы !, . или /):
!профиль — очки, уровень и статистика
!топ [неделя|месяц] — лидерборд
!ранг — твои места в рейтингах
!бейджи — твои бейджи
!история — последние начисления

Администраторам: /login <пароль> в личке бота`
}

// handleProfile показывает профиль участника.
func (b *Bot) handleProfile(ctx context.Context, chatID, userID int64) {
	stats, err := b.userService.GetStats(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения профиля")
		return
	}
	if stats == nil {
		b.sendMessage(ctx, chatID, "Профиль пока пуст — напиши что-нибудь в чат!")
		return
	}

	have, need := scoring.LevelProgress(stats.Experience)

	earned, err := b.badgeService.GetUserBadges(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения бейджей")
	}

	var sb strings.Builder
	sb.WriteString("👤 Твой профиль:\n\n")
	sb.WriteString(fmt.Sprintf("⭐ %s\n", common.FormatPoints(stats.TotalPoints)))
	sb.WriteString(fmt.Sprintf("📈 Уровень %d (%d/%d опыта до следующего)\n", stats.Level, have, need))
	sb.WriteString(fmt.Sprintf("💬 %d %s\n", stats.MessagesCount, common.PluralizeMessages(stats.MessagesCount)))
	sb.WriteString(fmt.Sprintf("🎤 %d %s в голосовых чатах\n", stats.VoiceMinutes, common.PluralizeMinutes(stats.VoiceMinutes)))
	sb.WriteString(fmt.Sprintf("❤️ Реакции: %d получено, %d поставлено\n", stats.ReactionsReceived, stats.ReactionsGiven))
	if len(earned) > 0 {
		sb.WriteString(fmt.Sprintf("🏅 Бейджей: %d\n", len(earned)))
	}

	b.sendMessage(ctx, chatID, sb.String())
}

// handleTop показывает лидерборд: общий, за неделю или за месяц.
func (b *Bot) handleTop(ctx context.Context, chatID int64, args []string) {
	period := ""
	if len(args) > 0 {
		period = strings.ToLower(args[0])
	}

	var title string
	var entries []*ranking.Entry
	var err error

	switch period {
	case "неделя", "week":
		title = "🏆 Топ за неделю:"
		entries, err = b.rankingService.GetWeeklyLeaderboard(ctx, leaderboardSize)
	case "месяц", "month":
		title = "🏆 Топ за месяц:"
		entries, err = b.rankingService.GetMonthlyLeaderboard(ctx, leaderboardSize)
	default:
		title = "🏆 Общий топ:"
		entries, err = b.rankingService.GetLeaderboard(ctx, leaderboardSize, 0)
	}
	if err != nil {
		log.WithError(err).Error("Ошибка чтения лидерборда")
		return
	}
	if len(entries) == 0 {
		b.sendMessage(ctx, chatID, "Пока никто не заработал очков за этот период")
		return
	}

	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s — %s (ур. %d)\n",
			rankMedal(e.Rank), e.Display(), common.FormatPoints(e.Points), e.Level))
	}

	b.sendMessage(ctx, chatID, sb.String())
}

// handleRank показывает места участника в трёх рейтингах.
func (b *Bot) handleRank(ctx context.Context, chatID, userID int64) {
	exists, err := b.userService.GetStats(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения профиля")
		return
	}
	if exists == nil {
		b.sendMessage(ctx, chatID, "Профиль пока пуст — напиши что-нибудь в чат!")
		return
	}

	rankings, err := b.rankingService.GetUserRankings(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения рангов")
		return
	}

	b.sendMessage(ctx, chatID, fmt.Sprintf(
		"📊 Твои места в рейтингах:\n\nОбщий: #%d\nЗа неделю: #%d\nЗа месяц: #%d",
		rankings.Total, rankings.Weekly, rankings.Monthly))
}

// handleBadges показывает бейджи участника.
func (b *Bot) handleBadges(ctx context.Context, chatID, userID int64) {
	earned, err := b.badgeService.GetUserBadges(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения бейджей")
		return
	}
	if len(earned) == 0 {
		b.sendMessage(ctx, chatID, "У тебя пока нет бейджей. Всё впереди!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 Твои бейджи:\n\n")
	for _, e := range earned {
		sb.WriteString(fmt.Sprintf("%s %s (%s) — %s\n", e.Icon, e.Name, e.Rarity, common.FormatDate(e.EarnedAt)))
	}

	b.sendMessage(ctx, chatID, sb.String())
}

// handleHistory показывает последние начисления участника.
func (b *Bot) handleHistory(ctx context.Context, chatID, userID int64) {
	entries, err := b.scoringService.GetHistory(ctx, userID, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения журнала")
		return
	}
	if len(entries) == 0 {
		b.sendMessage(ctx, chatID, "Журнал начислений пока пуст")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Последние начисления:\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %+d  %s\n", common.FormatDate(e.CreatedAt), e.Points, e.Reason))
	}

	b.sendMessage(ctx, chatID, sb.String())
}

// congratulate поздравляет участника с новыми бейджами в основном чате.
func (b *Bot) congratulate(ctx context.Context, userID int64, names []string) {
	user, err := b.userService.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Debug("Участник не найден для поздравления")
		return
	}

	var sb strings.Builder
	for _, name := range names {
		icon := "🏅"
		if badge, err := b.badgeService.GetBadgeByName(ctx, name); err == nil {
			icon = badge.Icon
		}
		sb.WriteString(fmt.Sprintf("%s %s получает бейдж «%s»!\n", icon, user.Display(), name))
	}

	b.sendMessage(ctx, b.cfg.FloodChatID, sb.String())
}

// AnnounceToFloodChat отправляет объявление в основной чат (для планировщика).
func (b *Bot) AnnounceToFloodChat(ctx context.Context, text string) {
	b.sendMessage(ctx, b.cfg.FloodChatID, text)
}

// rankMedal возвращает медаль для первых трёх мест, дальше — номер.
func rankMedal(rank int64) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}
