package main

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NotificationService pushes run results to the admin chat. With no API
// key configured it becomes a no-op so the rest of the app does not
// care whether telegram is wired.
type NotificationService struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewNotificationService(apiKey string, adminChatID int64) (*NotificationService, error) {
	if apiKey == "" || adminChatID == 0 {
		log.Printf("Telegram notifications disabled, no API key or admin chat configured")
		return &NotificationService{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Printf("Telegram notifications enabled for bot %s", bot.Self.UserName)

	return &NotificationService{bot: bot, adminChatID: adminChatID}, nil
}

func (s *NotificationService) Enabled() bool {
	return s.bot != nil
}

func (s *NotificationService) NotifyRun(query QueryModel, summary ExecutionSummary, runErr error) error {
	if s.bot == nil {
		return nil
	}

	var b strings.Builder
	if runErr != nil {
		fmt.Fprintf(&b, "❌ Query *%s* (#%d) failed\n", escapeMarkdown(query.Name), query.ID)
		fmt.Fprintf(&b, "`%s`", escapeMarkdown(runErr.Error()))
	} else {
		fmt.Fprintf(&b, "✅ Query *%s* (#%d) completed\n", escapeMarkdown(query.Name), query.ID)
		fmt.Fprintf(&b, "Found: %d\n", summary.Found)
		fmt.Fprintf(&b, "Saved: %d\n", summary.Saved)
		fmt.Fprintf(&b, "Media files: %d\n", summary.MediaFilesSaved)
		fmt.Fprintf(&b, "Users updated: %d", summary.UsersUpdated)
	}

	return s.sendMessage(b.String())
}

func (s *NotificationService) NotifyText(text string) error {
	if s.bot == nil {
		return nil
	}
	return s.sendMessage(text)
}

func (s *NotificationService) sendMessage(text string) error {
	msg := tgbotapi.NewMessage(s.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := s.bot.Send(msg); err != nil {
		// markdown in query names or error strings can break parsing,
		// retry as plain text before giving up
		retryMsg := tgbotapi.NewMessage(s.adminChatID, text)
		if _, retryErr := s.bot.Send(retryMsg); retryErr != nil {
			return fmt.Errorf("failed to send telegram message: %w", retryErr)
		}
	}
	return nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return replacer.Replace(text)
}
