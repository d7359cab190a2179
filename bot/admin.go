package bot

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketplace-review-server/services"
)

// notifyAdmins sends the full rendered review with a confirm control to
// every configured moderator. One failed delivery never stops the rest.
func (b *Bot) notifyAdmins(record *services.ReviewRecord) {
	keyboard := adminConfirmKeyboard(record.Direction, record.ID)
	text := reviewAdminText(record)
	for _, adminID := range b.adminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = keyboard
		if _, err := b.sender.Send(msg); err != nil {
			log.Printf("⚠️ failed to notify admin %d about review %d [%s]: %v", adminID, record.ID, record.Direction, err)
		}
	}
}

// handleAdminConfirm flips the review to confirmed, triggers publication
// and updates the moderator's panel in place. Confirming twice is safe.
func (b *Bot) handleAdminConfirm(action Action, actorID, chatID int64, messageID int) {
	if !b.isAdmin(actorID) {
		sendMessage(b.sender, chatID, "Moderator access required.")
		return
	}

	store := b.storeFor(action.Direction)
	if record := store.GetByID(action.ReviewID); record == nil {
		sendMessage(b.sender, chatID, "Review not found.")
		return
	}

	if !store.ConfirmByAdmin(action.ReviewID, actorID) {
		sendMessage(b.sender, chatID, "Could not confirm the review.")
		return
	}

	url, published := b.publisher.Publish(store, action.ReviewID, false)

	// Rebuild the panel from the stored row so the confirm control is gone
	// whatever the publish outcome was.
	record := store.GetByID(action.ReviewID)
	if record != nil {
		keyboard := adminRepublishKeyboard(record.Direction, record.ID)
		editPanel(b.sender, chatID, messageID, reviewAdminText(record), &keyboard)
	}

	if published {
		sendMessage(b.sender, chatID, fmt.Sprintf("Review %d confirmed and published: %s", action.ReviewID, url))
		go b.notifyParticipants(record, url)
	} else {
		sendMessage(b.sender, chatID, fmt.Sprintf("Review %d confirmed, but publishing failed. Use \"Publish again\" to retry.", action.ReviewID))
	}
}

// handleAdminPublish re-publishes an already confirmed review, replacing
// any previously recorded link.
func (b *Bot) handleAdminPublish(action Action, actorID, chatID int64) {
	if !b.isAdmin(actorID) {
		sendMessage(b.sender, chatID, "Moderator access required.")
		return
	}

	store := b.storeFor(action.Direction)
	record := store.GetByID(action.ReviewID)
	if record == nil {
		sendMessage(b.sender, chatID, "Review not found.")
		return
	}
	if !record.IsConfirmedByAdmin {
		sendMessage(b.sender, chatID, "Confirm the review first, then publish.")
		return
	}

	url, ok := b.publisher.Publish(store, action.ReviewID, true)
	if !ok {
		sendMessage(b.sender, chatID, "Publishing failed, please try again.")
		return
	}
	sendMessage(b.sender, chatID, fmt.Sprintf("Review %d published: %s", action.ReviewID, url))
}

// notifyParticipants tells both sides of the order about the published
// link. Deliveries are independent; one failure never suppresses the
// other notification.
func (b *Bot) notifyParticipants(record *services.ReviewRecord, url string) {
	if record == nil {
		return
	}
	order := b.orders.GetOrder(record.OrderID)
	if order == nil {
		log.Printf("⚠️ cannot notify participants of review %d: order %d not found", record.ID, record.OrderID)
		return
	}

	text := fmt.Sprintf("A review for order #%d has been published: %s", order.ID, url)

	sendMessage(b.sender, order.CustomerUserID, text)

	merchantChat, err := strconv.ParseInt(order.MerchantChatID, 10, 64)
	if err != nil {
		log.Printf("⚠️ cannot notify merchant of review %d: bad chat id %q", record.ID, order.MerchantChatID)
		return
	}
	sendMessage(b.sender, merchantChat, text)
}
