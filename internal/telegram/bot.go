package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-date-planner/internal/config"
	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/metrics"
	"ai-date-planner/internal/planner"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API around the date planning pipeline.
type Bot struct {
	api          *tgbotapi.BotAPI
	datePlanner  *planner.Planner
	validator    *dateplan.Validator
	metricsStore *metrics.Store
	cfg          *config.Config
	startTime    time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	datePlanner *planner.Planner,
	validator *dateplan.Validator,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		datePlanner:  datePlanner,
		validator:    validator,
		metricsStore: metricsStore,
		cfg:          cfg,
		startTime:    time.Now(),
	}, nil
}

// RegisterRoutes mounts the webhook endpoint on the shared router.
func (b *Bot) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

// isAllowed gates the bot to the configured user. An unset ID leaves
// the bot open, which suits local runs.
func (b *Bot) isAllowed(userID int64) bool {
	return b.cfg.TelegramAllowUserID == 0 || b.cfg.TelegramAllowUserID == userID
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch msg.Text {
	case "/start", "/help":
		b.handleHelpCommand(msg.Chat.ID)
	case "/cities":
		b.handleCitiesCommand(msg.Chat.ID)
	case "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	default:
		b.handlePlanRequest(msg)
	}
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	statusText := "💘 *Planning your date...* \n(Checking restaurants and weather)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Printf("Planning date for request: %s", msg.Text)

	outcome, metas, err := b.datePlanner.PlanDate(ctx, msg.Text)

	// Record metrics even if it errored (if we have metas)
	for _, m := range metas {
		b.metricsStore.RecordMeta(m)
	}

	if err != nil {
		log.Printf("Error planning date: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText := fmt.Sprintf("❌ *Error planning your date:*\n```\n%v\n```", safeErr)
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
		edit.ParseMode = "Markdown"
		b.api.Send(edit)
		return
	}

	planText, detailsText := formatOutcomeParts(outcome)

	// Edit message with the plan
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, planText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)

	// Send second message with the venue details
	if detailsText != "" {
		detailsMsg := tgbotapi.NewMessage(msg.Chat.ID, detailsText)
		detailsMsg.ParseMode = "Markdown"
		b.api.Send(detailsMsg)
	}
}

// formatOutcomeParts renders the plan message and the venue details
// message. The details string is empty when nothing was found.
func formatOutcomeParts(outcome *planner.Outcome) (string, string) {
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("💘 *Date Plan for %s*\n\n", outcome.Plan.City))

	if len(outcome.Warnings) > 0 {
		pb.WriteString("⚠️ _Adjustments made:_\n")
		for _, warning := range outcome.Warnings {
			pb.WriteString(fmt.Sprintf("• %s\n", warning))
		}
		pb.WriteString("\n")
	}

	pb.WriteString(outcome.FinalPlan)

	if len(outcome.Errors) > 0 {
		pb.WriteString("\n\n_Heads up:_\n")
		for _, e := range outcome.Errors {
			pb.WriteString(fmt.Sprintf("• %s\n", e))
		}
	}

	if len(outcome.Restaurants) == 0 {
		return pb.String(), ""
	}

	var db strings.Builder
	db.WriteString("📋 *Venue Details*\n\n")

	top := outcome.Restaurants
	if len(top) > 3 {
		top = top[:3]
	}
	for i, r := range top {
		db.WriteString(fmt.Sprintf("*%d. %s*\n", i+1, r.Name))
		db.WriteString(fmt.Sprintf("⭐ %.1f/5 (%d reviews)\n", r.Rating, r.TotalRatings))
		db.WriteString(fmt.Sprintf("💵 %s\n", r.PriceLevel))
		db.WriteString(fmt.Sprintf("📍 %s\n", r.Address))
		if r.OpenNow != nil {
			if *r.OpenNow {
				db.WriteString("🟢 Open now\n")
			} else {
				db.WriteString("🔴 Closed now\n")
			}
		}
		db.WriteString("\n")
	}

	return pb.String(), db.String()
}

func (b *Bot) handleHelpCommand(chatID int64) {
	help := `💘 *AI Date Planner*

Tell me about your ideal date and I will plan it:
• "Plan a romantic dinner date in Mumbai under ₹2500"
• "Suggest a cozy café date in Delhi this weekend"
• "Plan an indoor date in Bangalore if it rains"

Commands:
/cities - supported cities
/metrics - usage and health report`

	msg := tgbotapi.NewMessage(chatID, help)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) handleCitiesCommand(chatID int64) {
	cities := b.validator.DisplayCities()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏙 *Supported Cities* (%d)\n\n", len(cities)))
	for _, city := range cities {
		sb.WriteString(fmt.Sprintf("• %s\n", city))
	}
	sb.WriteString("\nAsk for a date in any of these and I will take it from there!")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage := b.metricsStore.GetDailyUsage(7)
	agents := b.metricsStore.GetAgentUsage()
	health := metrics.GetSysHealth(b.startTime)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	if len(agents) > 0 {
		sb.WriteString("\n🤖 *Per Agent*\n")
		for _, a := range agents {
			sb.WriteString(fmt.Sprintf("• *%s*: %d execs, %d tokens, avg %dms\n", a.AgentName, a.Executions, a.TotalPrompt+a.TotalCompletion, a.AvgLatencyMS))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
