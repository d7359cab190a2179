package bot

import (
	"log"
	"strconv"
	"strings"

	"marketplace-review-server/models"
	"marketplace-review-server/services"
)

// checkPermission ties an actor to the role the direction expects: the
// order's customer for user_to_merchant, the merchant's bound chat for
// merchant_to_user. Chat ids are compared stringified because merchants
// are bound by chat id strings.
func checkPermission(direction models.ReviewDirection, order *models.Order, actorID int64) bool {
	switch direction {
	case models.DirectionUserToMerchant:
		return order.CustomerUserID == actorID
	case models.DirectionMerchantToUser:
		return order.MerchantChatID == strconv.FormatInt(actorID, 10)
	default:
		return false
	}
}

// sessionFor resolves the live session a pressed button belongs to. A
// button on a superseded panel, or one pressed after the session went
// away, is answered with an expiry notice instead of being trusted.
func (b *Bot) sessionFor(action Action, chatID int64, messageID int) (*ReviewSession, bool) {
	session, ok := b.sessions.Get(chatID, action.Direction)
	if !ok || session.OrderID != action.OrderID {
		editPanel(b.sender, chatID, messageID,
			"This review session has expired. Press the review button again to restart.", nil)
		return nil, false
	}
	return session, true
}

// handleStart gates eligibility and opens the rating walk. The pressed
// message becomes the wizard's panel.
func (b *Bot) handleStart(action Action, actorID, chatID int64, messageID int) {
	order := b.orders.GetOrder(action.OrderID)
	if order == nil {
		editPanel(b.sender, chatID, messageID, "Order not found.", nil)
		return
	}
	if !checkPermission(action.Direction, order, actorID) {
		editPanel(b.sender, chatID, messageID, "You are not a participant of this order.", nil)
		return
	}
	if existing := b.storeFor(action.Direction).GetByOrderID(action.OrderID); existing != nil && existing.IsConfirmedByAdmin {
		editPanel(b.sender, chatID, messageID,
			"Your review for this order is already confirmed and can no longer be changed.", nil)
		return
	}

	// The first review action retroactively closes the order. Failure to
	// flip the status must not block the walk.
	if order.Status != models.OrderStatusCompleted {
		if !b.orders.UpdateOrderStatus(order.ID, models.OrderStatusCompleted) {
			log.Printf("⚠️ wizard: could not mark order %d completed, continuing", order.ID)
		}
	}

	session := b.sessions.Start(chatID, action.Direction, action.OrderID, chatID, messageID)
	dim, _ := session.NextDimension()
	b.renderRatingPrompt(session, dim)
}

// handleRate records one dimension score and advances the walk.
func (b *Bot) handleRate(action Action, chatID int64, messageID int) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	if session.State == StateSubmitted {
		editPanel(b.sender, session.PanelChatID, session.PanelMessageID,
			"Review already submitted and pending confirmation.", nil)
		return
	}

	if !validDimension(session.Direction, action.Dimension) || !models.ValidScore(action.Value) {
		// Re-prompt exactly the item still missing; accepted fields stay.
		if dim, missing := session.NextDimension(); missing {
			b.renderRatingPrompt(session, dim)
		} else {
			b.renderSubmitReady(session)
		}
		return
	}

	session.Ratings[action.Dimension] = action.Value
	b.sessions.Touch(session)

	if dim, missing := session.NextDimension(); missing {
		session.State = StateAwaitingRating
		b.renderRatingPrompt(session, dim)
		return
	}
	session.State = StateSubmitReady
	b.renderSubmitReady(session)
}

// handleTextRequest detours into free-text entry.
func (b *Bot) handleTextRequest(action Action, chatID int64, messageID int) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	session.State = StateAwaitingText
	b.sessions.Touch(session)
	keyboard := textPromptKeyboard(session.Direction, session.OrderID)
	editPanel(b.sender, session.PanelChatID, session.PanelMessageID, textPromptText(session), &keyboard)
}

// handleIncomingText stores a free-text comment sent while a session is
// expecting one. Blank or whitespace-only text means "no comment".
func (b *Bot) handleIncomingText(chatID int64, text string) {
	session, ok := b.sessions.AwaitingText(chatID)
	if !ok {
		return
	}
	if strings.TrimSpace(text) == "" {
		session.TextDraft = nil
	} else {
		session.TextDraft = &text
	}
	session.State = StateSubmitReady
	b.sessions.Touch(session)
	b.renderSubmitReady(session)
}

// handleReset clears the walk and starts at dimension one.
func (b *Bot) handleReset(action Action, chatID int64, messageID int) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	session.Ratings = make(map[string]int)
	session.TextDraft = nil
	session.State = StateAwaitingRating
	b.sessions.Touch(session)
	dim, _ := session.NextDimension()
	b.renderRatingPrompt(session, dim)
}

// handleSubmit moves to the anonymity choice, or re-prompts the first
// missing dimension if the vector is incomplete.
func (b *Bot) handleSubmit(action Action, chatID int64, messageID int) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	if dim, missing := b.firstInvalidDimension(session); missing {
		session.State = StateAwaitingRating
		b.renderRatingPrompt(session, dim)
		return
	}
	session.State = StateAwaitingAnonymity
	b.sessions.Touch(session)
	keyboard := anonymityKeyboard(session.Direction, session.OrderID)
	editPanel(b.sender, session.PanelChatID, session.PanelMessageID, anonymityText(session), &keyboard)
}

// handleBackToSubmit returns from the anonymity choice or the text prompt.
func (b *Bot) handleBackToSubmit(action Action, chatID int64, messageID int) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	session.State = StateSubmitReady
	b.sessions.Touch(session)
	b.renderSubmitReady(session)
}

// handleFinalize persists the review. Permission is re-checked because the
// actor's binding to the order may have changed since the walk started.
func (b *Bot) handleFinalize(action Action, actorID, chatID int64, messageID int, anonymous bool) {
	session, ok := b.sessionFor(action, chatID, messageID)
	if !ok {
		return
	}
	if dim, missing := b.firstInvalidDimension(session); missing {
		session.State = StateAwaitingRating
		b.renderRatingPrompt(session, dim)
		return
	}

	order := b.orders.GetOrder(session.OrderID)
	if order == nil {
		b.sessions.Delete(chatID, session.Direction)
		editPanel(b.sender, session.PanelChatID, session.PanelMessageID, "Order not found.", nil)
		return
	}
	if !checkPermission(session.Direction, order, actorID) {
		b.sessions.Delete(chatID, session.Direction)
		editPanel(b.sender, session.PanelChatID, session.PanelMessageID,
			"You no longer have permission to submit this review.", nil)
		return
	}

	store := b.storeFor(session.Direction)
	reviewID, created := store.Create(services.CreateReviewParams{
		OrderID:    order.ID,
		MerchantID: order.MerchantID,
		UserID:     order.CustomerUserID,
		Scores:     session.Ratings,
		Text:       session.TextDraft,
		Anonymous:  anonymous,
	})
	if !created {
		// Keep everything the participant entered so submit can be retried.
		session.State = StateSubmitReady
		keyboard := submitReadyKeyboard(session.Direction, session.OrderID)
		editPanel(b.sender, session.PanelChatID, session.PanelMessageID,
			"Could not save the review, please try again.\n\n"+submitReadyText(session), &keyboard)
		return
	}

	session.TextDraft = nil
	session.State = StateSubmitted
	b.sessions.Touch(session)
	editPanel(b.sender, session.PanelChatID, session.PanelMessageID,
		"Review submitted. It will be published after moderator confirmation.", nil)

	record := store.GetByID(reviewID)
	if record == nil {
		log.Printf("⚠️ wizard: stored review %d [%s] could not be reloaded for notification", reviewID, session.Direction)
		return
	}
	if b.OnSubmit != nil {
		b.OnSubmit(record)
	}
	go b.notifyAdmins(record)
}

// handleCancel discards the session from any state.
func (b *Bot) handleCancel(action Action, chatID int64, messageID int) {
	b.sessions.Delete(chatID, action.Direction)
	editPanel(b.sender, chatID, messageID, "Review cancelled.", nil)
}

// firstInvalidDimension returns the first dimension that is missing or out
// of range, in walk order.
func (b *Bot) firstInvalidDimension(session *ReviewSession) (string, bool) {
	for _, dim := range session.Direction.Dimensions() {
		value, ok := session.Ratings[dim]
		if !ok || !models.ValidScore(value) {
			delete(session.Ratings, dim)
			return dim, true
		}
	}
	return "", false
}

func (b *Bot) renderRatingPrompt(session *ReviewSession, dimension string) {
	keyboard := ratingKeyboard(session.Direction, session.OrderID, dimension)
	editPanel(b.sender, session.PanelChatID, session.PanelMessageID, ratingPromptText(session, dimension), &keyboard)
}

func (b *Bot) renderSubmitReady(session *ReviewSession) {
	keyboard := submitReadyKeyboard(session.Direction, session.OrderID)
	editPanel(b.sender, session.PanelChatID, session.PanelMessageID, submitReadyText(session), &keyboard)
}

func validDimension(direction models.ReviewDirection, dimension string) bool {
	for _, dim := range direction.Dimensions() {
		if dim == dimension {
			return true
		}
	}
	return false
}
