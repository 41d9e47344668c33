package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/subscription"
)

// Display labels for the category keyboard, in priority order.
var categoryLabels = map[string]string{
	config.CategoryPolitics:   "🏛 Siyosat",
	config.CategoryEconomy:    "💰 Iqtisod",
	config.CategorySociety:    "👥 Jamiyat",
	config.CategoryWorld:      "🌍 Dunyo",
	config.CategoryHealth:     "🏥 Salomatlik",
	config.CategoryTechnology: "📱 Texnologiya",
	config.CategorySport:      "⚽️ Sport",
	config.CategoryWeather:    "🌤 Ob-havo",
}

var languageLabels = map[string]string{
	"uz":      "🇺🇿 O'zbekcha",
	"uz_cyrl": "🇺🇿 Ўзбекча (кирилл)",
	"ru":      "🇷🇺 Русский",
	"en":      "🇬🇧 English",
}

const (
	callbackCategory = "cat:"
	callbackLanguage = "lang:"
	callbackPlan     = "plan:"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	sub, err := b.subs.Register(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to register subscriber")
		b.reply(msg.Chat.ID, "Xatolik yuz berdi, keyinroq urinib ko'ring.")

		return
	}

	b.logger.Info().Str("command", msg.Command()).Int64("user_id", msg.From.ID).Msg("Handling command")

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg, sub)
	case "help":
		b.handleHelp(msg)
	case "categories":
		b.handleCategories(ctx, msg.Chat.ID, sub)
	case "latest":
		b.handleLatest(ctx, msg.Chat.ID, sub)
	case "language":
		b.handleLanguage(msg.Chat.ID)
	case "plans":
		b.handlePlans(msg.Chat.ID)
	case "status":
		b.handleStatus(msg.Chat.ID, sub)
	case "grant":
		b.handleGrant(ctx, msg)
	case "trial":
		b.handleTrialGrant(ctx, msg)
	case "stats":
		b.handleStats(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Noma'lum buyruq. /help ni bosing.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, sub *domain.Subscriber) {
	var sb strings.Builder

	sb.WriteString("Assalomu alaykum! Bu bot sizga tanlagan mavzular bo'yicha yangiliklarni yuboradi.\n\n")

	now := time.Now()

	switch {
	case sub.HasActiveSubscription(now):
		if plan, ok := config.PlanByKey(sub.SubscriptionPlan); ok {
			sb.WriteString(fmt.Sprintf("Sizda faol \"%s\" obunasi bor.\n", plan.Name))
		}
	case sub.TrialEnd != nil && sub.TrialEnd.After(now):
		days := int(time.Until(*sub.TrialEnd).Hours()/24) + 1
		sb.WriteString(fmt.Sprintf("Sizga %d kunlik bepul sinov muddati berildi.\n", days))
	default:
		sb.WriteString("Sinov muddati tugagan. Obuna uchun /plans ni bosing.\n")
	}

	sb.WriteString("\nMavzularni tanlash uchun /categories ni bosing.")

	b.reply(msg.Chat.ID, sb.String())
	b.handleCategories(ctx, msg.Chat.ID, sub)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	help := `Buyruqlar:
/categories — mavzularni tanlash
/latest — tanlangan mavzular bo'yicha so'nggi yangiliklar
/language — til sozlamasi
/plans — obuna rejalari
/status — obuna holati`

	if b.cfg.IsAdmin(msg.From.ID) {
		help += "\n/grant <telegram_id> <plan> — obunani faollashtirish" +
			"\n/trial <telegram_id> — sinov muddatini berish" +
			"\n/stats — ingestion statistikasi"
	}

	b.reply(msg.Chat.ID, help)
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64, sub *domain.Subscriber) {
	selected, err := b.subs.Interests(ctx, sub)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list interests")
		b.reply(chatID, "Xatolik yuz berdi, keyinroq urinib ko'ring.")

		return
	}

	b.replyWithKeyboard(chatID, "Qiziqqan mavzularingizni tanlang:", categoryKeyboard(selected))
}

func (b *Bot) handleLatest(ctx context.Context, chatID int64, sub *domain.Subscriber) {
	selected, err := b.subs.Interests(ctx, sub)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list interests")

		return
	}

	if len(selected) == 0 {
		b.reply(chatID, "Avval /categories orqali mavzu tanlang.")

		return
	}

	sent := 0

	for _, category := range selected {
		item, err := b.database.LatestItemByCategory(ctx, category)
		if err != nil {
			b.logger.Error().Err(err).Str("category", category).Msg("failed to load latest item")

			continue
		}

		if item == nil {
			continue
		}

		if err := b.SendNews(ctx, *sub, item); err != nil {
			b.logger.Warn().Err(err).Str("category", category).Msg("failed to deliver latest item")

			continue
		}

		sent++
	}

	if sent == 0 {
		b.reply(chatID, "Hozircha yangiliklar yo'q.")
	}
}

func (b *Bot) handleLanguage(chatID int64) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(languageLabels))

	for _, code := range []string{"uz", "uz_cyrl", "ru", "en"} {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(languageLabels[code], callbackLanguage+code),
		))
	}

	b.replyWithKeyboard(chatID, "Tilni tanlang:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handlePlans(chatID int64) {
	var sb strings.Builder

	sb.WriteString("Obuna rejalari:\n\n")

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 2)

	for _, plan := range config.Plans() {
		limit := "cheksiz mavzular"
		if !plan.Unlimited() {
			limit = fmt.Sprintf("%d ta mavzu", *plan.CategoryLimit)
		}

		sb.WriteString(fmt.Sprintf("• %s — %d so'm / %d kun, %s\n",
			plan.Name, plan.Price, int(plan.Duration.Hours()/24), limit))

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(plan.Name, callbackPlan+plan.Key),
		))
	}

	b.replyWithKeyboard(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleStatus(chatID int64, sub *domain.Subscriber) {
	now := time.Now()

	switch {
	case sub.HasActiveSubscription(now):
		plan, _ := config.PlanByKey(sub.SubscriptionPlan)
		b.reply(chatID, fmt.Sprintf("Obuna: %s, amal qilish muddati: %s",
			plan.Name, sub.SubscriptionEnd.Format("02.01.2006")))
	case sub.TrialEnd != nil && sub.TrialEnd.After(now):
		b.reply(chatID, fmt.Sprintf("Sinov muddati: %s gacha", sub.TrialEnd.Format("02.01.2006")))
	default:
		b.reply(chatID, "Faol obuna yo'q. /plans ni bosing.")
	}
}

// handleGrant activates a subscription for a subscriber. Payment collection
// happens outside the bot; this is the admin-side confirmation.
func (b *Bot) handleGrant(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Bu buyruq faqat administratorlar uchun.")

		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(msg.Chat.ID, "Foydalanish: /grant <telegram_id> <plan>")

		return
	}

	telegramID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "telegram_id raqam bo'lishi kerak")

		return
	}

	target, err := b.subs.Register(ctx, telegramID, "")
	if err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to load grant target")
		b.reply(msg.Chat.ID, "Obunachini yuklab bo'lmadi.")

		return
	}

	if err := b.subs.ActivateSubscription(ctx, target, args[1]); err != nil {
		if errors.Is(err, subscription.ErrUnknownPlan) {
			b.reply(msg.Chat.ID, "Noma'lum reja: "+args[1])

			return
		}

		b.logger.Error().Err(err).Msg("failed to activate subscription")
		b.reply(msg.Chat.ID, "Obunani faollashtirib bo'lmadi.")

		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("Obuna faollashtirildi: %d → %s", telegramID, args[1]))
	b.reply(telegramID, "Obunangiz faollashtirildi! /categories orqali mavzularni tanlang.")
}

// handleTrialGrant starts the trial for a subscriber who never had one, such
// as accounts imported without a trial_end.
func (b *Bot) handleTrialGrant(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Bu buyruq faqat administratorlar uchun.")

		return
	}

	telegramID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "Foydalanish: /trial <telegram_id>")

		return
	}

	target, err := b.subs.Register(ctx, telegramID, "")
	if err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to load trial target")
		b.reply(msg.Chat.ID, "Obunachini yuklab bo'lmadi.")

		return
	}

	if err := b.subs.StartTrial(ctx, target); err != nil {
		if errors.Is(err, subscription.ErrTrialUsed) {
			b.reply(msg.Chat.ID, "Bu foydalanuvchi sinov muddatidan foydalangan.")

			return
		}

		b.logger.Error().Err(err).Msg("failed to start trial")
		b.reply(msg.Chat.ID, "Sinov muddatini berib bo'lmadi.")

		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("Sinov muddati berildi: %d", telegramID))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Bu buyruq faqat administratorlar uchun.")

		return
	}

	backlog, err := b.database.CountUnprocessed(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to count unprocessed posts")
		b.reply(msg.Chat.ID, "Statistikani yuklab bo'lmadi.")

		return
	}

	subscribers, err := b.database.CountSubscribers(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to count subscribers")
		b.reply(msg.Chat.ID, "Statistikani yuklab bo'lmadi.")

		return
	}

	counts, err := b.database.ItemCountsByCategory(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to count items by category")
		b.reply(msg.Chat.ID, "Statistikani yuklab bo'lmadi.")

		return
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Obunachilar: %d\nNavbatdagi postlar: %d\n\nYangiliklar:\n", subscribers, backlog)

	total := 0

	for _, category := range config.CategoryPriority {
		fmt.Fprintf(&sb, "  %s: %d\n", category, counts[category])
		total += counts[category]
	}

	if general := counts[config.CategoryGeneral]; general > 0 {
		fmt.Fprintf(&sb, "  %s: %d\n", config.CategoryGeneral, general)
		total += general
	}

	fmt.Fprintf(&sb, "Jami: %d", total)

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	sub, err := b.subs.Register(ctx, query.From.ID, query.From.UserName)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", query.From.ID).Msg("failed to register subscriber")

		return
	}

	data := query.Data

	switch {
	case strings.HasPrefix(data, callbackCategory):
		b.handleCategoryToggle(ctx, query, sub, strings.TrimPrefix(data, callbackCategory))
	case strings.HasPrefix(data, callbackLanguage):
		b.handleLanguageSelect(ctx, query, sub, strings.TrimPrefix(data, callbackLanguage))
	case strings.HasPrefix(data, callbackPlan):
		b.handlePlanSelect(query, strings.TrimPrefix(data, callbackPlan))
	}
}

func (b *Bot) handleCategoryToggle(ctx context.Context, query *tgbotapi.CallbackQuery, sub *domain.Subscriber, category string) {
	selected, err := b.subs.Interests(ctx, sub)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list interests")

		return
	}

	isSelected := false

	for _, c := range selected {
		if c == category {
			isSelected = true

			break
		}
	}

	if isSelected {
		err = b.subs.DeselectCategory(ctx, sub, category)
	} else {
		err = b.subs.SelectCategory(ctx, sub, category)
	}

	switch {
	case errors.Is(err, subscription.ErrLimitReached):
		b.answerCallback(query.ID, "Rejangizdagi mavzular soni cheklangan. Ko'proq mavzu uchun /plans ni bosing.")

		return
	case err != nil:
		b.logger.Error().Err(err).Str("category", category).Msg("failed to toggle category")
		b.answerCallback(query.ID, "Xatolik yuz berdi.")

		return
	}

	selected, err = b.subs.Interests(ctx, sub)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to reload interests")

		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(
		query.Message.Chat.ID, query.Message.MessageID, categoryKeyboard(selected))
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn().Err(err).Msg("failed to refresh category keyboard")
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("failed to ack callback")
	}
}

func (b *Bot) handleLanguageSelect(ctx context.Context, query *tgbotapi.CallbackQuery, sub *domain.Subscriber, language string) {
	if _, ok := languageLabels[language]; !ok {
		return
	}

	if err := b.database.SetLanguage(ctx, sub.ID, language); err != nil {
		b.logger.Error().Err(err).Msg("failed to set language")
		b.answerCallback(query.ID, "Xatolik yuz berdi.")

		return
	}

	b.answerCallback(query.ID, "Til saqlandi: "+languageLabels[language])
}

func (b *Bot) handlePlanSelect(query *tgbotapi.CallbackQuery, planKey string) {
	plan, ok := config.PlanByKey(planKey)
	if !ok {
		return
	}

	b.answerCallback(query.ID, fmt.Sprintf(
		"\"%s\" rejasi uchun to'lov bo'yicha administratorga murojaat qiling.", plan.Name))
}

func categoryKeyboard(selected []string) tgbotapi.InlineKeyboardMarkup {
	selectedSet := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedSet[c] = true
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(config.CategoryPriority))

	for _, category := range config.CategoryPriority {
		label := categoryLabels[category]
		if selectedSet[category] {
			label = "✅ " + label
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackCategory+category),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
