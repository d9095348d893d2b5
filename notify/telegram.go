package notify

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is Telegram's limit for a single text message
const MaxMessageLength = 4096

// Summary describes a finished run
type Summary struct {
	BaseURL    string
	Pages      int
	Rows       int
	StopReason string
	OutputPath string
	Saved      bool
	Err        error
}

// Notifier sends run summaries to a Telegram chat
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *log.Logger
}

// NewNotifier authorizes the bot token against the Telegram API
func NewNotifier(token string, chatID int64, logger *log.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	return NewNotifierWithBot(bot, chatID, logger), nil
}

// NewNotifierWithBot wraps an already authorized bot
func NewNotifierWithBot(bot *tgbotapi.BotAPI, chatID int64, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With("component", "telegram"),
	}
}

// Send posts the summary, split into several messages if needed
func (n *Notifier) Send(s Summary) error {
	for _, part := range splitMessage(FormatSummary(s), MaxMessageLength) {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, part)); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	n.logger.Debug("sent run summary", "chat_id", n.chatID)
	return nil
}

// FormatSummary renders the run summary as plain text
func FormatSummary(s Summary) string {
	var sb strings.Builder

	sb.WriteString("H1B sponsor scrape finished\n\n")
	sb.WriteString(fmt.Sprintf("Source: %s\n", s.BaseURL))
	sb.WriteString(fmt.Sprintf("Pages fetched: %d\n", s.Pages))
	sb.WriteString(fmt.Sprintf("Rows collected: %d\n", s.Rows))
	sb.WriteString(fmt.Sprintf("Stopped by: %s\n", s.StopReason))

	switch {
	case s.Err != nil:
		sb.WriteString(fmt.Sprintf("Save failed: %v\n", s.Err))
	case s.Saved:
		sb.WriteString(fmt.Sprintf("Saved to: %s\n", s.OutputPath))
	default:
		sb.WriteString("No data to save.\n")
	}

	return sb.String()
}

// splitMessage splits a message into chunks of at most maxLen bytes,
// breaking at line boundaries where possible
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		// a single line longer than maxLen is cut into pieces
		for len(line) >= maxLen {
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
