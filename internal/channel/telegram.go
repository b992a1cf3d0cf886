package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pulsebot/internal/domain"
)

const telegramMaxMsgLen = 4000

// QueryService answers analytics questions. Implemented by the engine.
type QueryService interface {
	Summary() domain.Report
	TopHelpTopics(n int) domain.Report
	TopThreads(minReplies, n int) domain.Report
	HandleQuery(ctx context.Context, userID, query string) string
}

// Telegram is the operator surface: moderators ask for reports and freeform
// analytics over a private bot chat.
type Telegram struct {
	token     string
	allowFrom []int64 // operator user IDs, empty = allow all

	bot     *tgbotapi.BotAPI
	queries QueryService
	logger  *slog.Logger
}

type TelegramConfig struct {
	Token     string
	AllowFrom []string
	Queries   QueryService
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	return &Telegram{
		token:     cfg.Token,
		allowFrom: allowed,
		queries:   cfg.Queries,
		logger:    cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and polls for operator queries until the
// context ends.
func (t *Telegram) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram operator surface connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, update)
			}
		}
	}()
	return nil
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}
	msg := update.Message
	if !t.allowed(msg.From.ID) {
		t.logger.Warn("telegram query from unauthorized user", "user", msg.From.ID)
		return
	}

	var reply string
	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "/start", "/help":
		reply = "Commands: /summary, /topics [n], /threads [min] [n], or just ask a question."
	case "/summary":
		reply = t.queries.Summary().Text
	case "/topics":
		reply = t.queries.TopHelpTopics(argInt(args, 0, 0)).Text
	case "/threads":
		reply = t.queries.TopThreads(argInt(args, 0, 0), argInt(args, 1, 0)).Text
	default:
		userID := strconv.FormatInt(msg.From.ID, 10)
		reply = t.queries.HandleQuery(ctx, userID, msg.Text)
	}
	t.send(msg.Chat.ID, reply)
}

func (t *Telegram) allowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

func (t *Telegram) send(chatID int64, text string) {
	if text == "" {
		return
	}
	for _, chunk := range splitText(text, telegramMaxMsgLen) {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			t.logger.Error("telegram send failed", "chatID", chatID, "err", err)
			return
		}
	}
}

func splitCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	// Strip the @botname suffix Telegram appends in groups.
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd, fields[1:]
}

func argInt(args []string, idx, fallback int) int {
	if idx >= len(args) {
		return fallback
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitText(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var chunks []string
	for len(text) > max {
		cut := strings.LastIndex(text[:max], "\n")
		if cut <= 0 {
			// No line break to cut on; back up to a rune boundary.
			cut = max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
