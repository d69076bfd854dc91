// Package telegram delivers lifecycle notifications to reporters who
// registered a Telegram chat with their complaint. Strictly best-effort:
// every failure is logged and swallowed.
package telegram

import (
	"log"

	"nagarseva/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends notification messages through a Telegram bot.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
}

// NewNotifier authorizes the bot with the given token.
func NewNotifier(token string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Telegram notifier authorized as %s", bot.Self.UserName)
	return &Notifier{BotAPI: bot}, nil
}

// Push sends one notification to the reporter's chat.
func (n *Notifier) Push(notification models.Notification, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, notification.Message)
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to push %s notification for complaint %s to Telegram: %v",
			notification.Stage, notification.ComplaintCode, err)
	}
}
