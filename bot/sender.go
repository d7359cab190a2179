package bot

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the outbound Telegram surface the wizard talks to.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// sendMessage delivers a message best-effort; failures are logged, never
// propagated.
func sendMessage(s Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.Send(msg); err != nil {
		log.Printf("⚠️ failed to send message to chat %d: %v", chatID, err)
	}
}

// editPanel rewrites the wizard's panel message in place. Telegram rejects
// edits that change nothing; that rejection is treated as success.
func editPanel(s Sender, chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = keyboard
	if _, err := s.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		log.Printf("⚠️ failed to edit panel %d/%d: %v", chatID, messageID, err)
	}
}

// answerCallback stops the client-side spinner on a pressed button.
func answerCallback(s Sender, callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := s.Request(callback); err != nil {
		log.Printf("⚠️ failed to answer callback: %v", err)
	}
}
