package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the chunk size used when splitting long messages. It stays below the
// Bot API limit of 4096 characters.
const MaxMessageLength = 3800

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
	SendMessageTo(chatID int64, text string) error
}

// Update is the part of a Telegram update the command handler reads.
type Update struct {
	UpdateID int
	ChatID   int64
	Text     string
}

// Bot is a Notifier that can also read incoming updates.
type Bot interface {
	Notifier
	GetUpdates(offset int) ([]Update, error)
}

// client is an implementation of Bot.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram client bound to the owner chat.
func NewClient(botToken string, chatID int64) (Bot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	return c.SendMessageTo(c.chatID, text)
}

// SendMessageTo sends text as plain text, split on line boundaries. Every chunk is attempted;
// the first error is returned.
func (c *client) SendMessageTo(chatID int64, text string) error {
	var firstErr error
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to send telegram message: %w", err)
		}
	}
	return firstErr
}

// GetUpdates returns pending updates starting at offset without long polling.
func (c *client) GetUpdates(offset int) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = 0
	raw, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram updates: %w", err)
	}
	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		upd := Update{UpdateID: u.UpdateID}
		if u.Message != nil {
			upd.Text = strings.TrimSpace(u.Message.Text)
			if u.Message.Chat != nil {
				upd.ChatID = u.Message.Chat.ID
			}
		}
		updates = append(updates, upd)
	}
	return updates, nil
}

// SplitMessage breaks text into chunks of at most limit characters at line boundaries.
// A single line longer than limit is kept whole.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	var (
		parts   []string
		current []string
		size    int
	)
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line) + 1
		if size+n > limit && len(current) > 0 {
			parts = append(parts, strings.Join(current, "\n"))
			current = []string{line}
			size = n - 1
			continue
		}
		current = append(current, line)
		size += n
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, "\n"))
	}
	return parts
}
