package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketplace-review-server/models"
	"marketplace-review-server/services"
)

// Bot drives the review wizard over Telegram. One instance serves every
// conversation; per-conversation state lives in the session manager.
type Bot struct {
	api             *tgbotapi.BotAPI
	sender          Sender
	sessions        *SessionManager
	orders          *services.OrderService
	userReviews     services.ReviewStore
	merchantReviews services.ReviewStore
	publisher       *services.PublishService
	adminIDs        []int64

	// OnSubmit, when set, receives every persisted review. Used to push
	// submissions onto the moderation live feed.
	OnSubmit func(*services.ReviewRecord)
}

// New authorizes against the Bot API and returns a ready bot.
func New(token string, debug bool, orders *services.OrderService, userReviews, merchantReviews services.ReviewStore, publisher *services.PublishService, adminIDs []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = debug
	log.Printf("✅ Telegram bot authorized as @%s", api.Self.UserName)

	b := newWithSender(api, orders, userReviews, merchantReviews, publisher, adminIDs)
	b.api = api
	return b, nil
}

// newWithSender wires a bot around an arbitrary sender. Tests use it to
// substitute a recording transport.
func newWithSender(sender Sender, orders *services.OrderService, userReviews, merchantReviews services.ReviewStore, publisher *services.PublishService, adminIDs []int64) *Bot {
	return &Bot{
		sender:          sender,
		sessions:        NewSessionManager(),
		orders:          orders,
		userReviews:     userReviews,
		merchantReviews: merchantReviews,
		publisher:       publisher,
		adminIDs:        adminIDs,
	}
}

// Sessions exposes the session manager for the janitor job.
func (b *Bot) Sessions() *SessionManager {
	return b.sessions
}

// API exposes the underlying client so the channel publisher can share
// the bot's credentials.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Run polls for updates until the context is cancelled. Updates are
// processed on this goroutine, so actions on the same session are always
// handled strictly in order; only outbound notifications are spawned.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Println("🤖 Review bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Review bot stopping")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			sendMessage(b.sender, message.Chat.ID,
				"This bot collects reviews after completed orders. Use the review button under your order to begin.")
		}
		return
	}
	if message.Text != "" {
		b.handleIncomingText(message.Chat.ID, message.Text)
	}
}

// handleCallback routes one button press. Callback data is decoded once;
// the switch below covers the whole verb set.
func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	answerCallback(b.sender, cq.ID, "")
	if cq.Message == nil {
		return
	}

	action, ok := ParseAction(cq.Data)
	if !ok {
		log.Printf("⚠️ unroutable callback data %q from user %d", cq.Data, cq.From.ID)
		return
	}

	actorID := cq.From.ID
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch action.Verb {
	case VerbStart:
		b.handleStart(action, actorID, chatID, messageID)
	case VerbRate:
		b.handleRate(action, chatID, messageID)
	case VerbText:
		b.handleTextRequest(action, chatID, messageID)
	case VerbSubmit:
		b.handleSubmit(action, chatID, messageID)
	case VerbSubmitAnon:
		b.handleFinalize(action, actorID, chatID, messageID, true)
	case VerbSubmitPublic:
		b.handleFinalize(action, actorID, chatID, messageID, false)
	case VerbReset:
		b.handleReset(action, chatID, messageID)
	case VerbBackSubmit:
		b.handleBackToSubmit(action, chatID, messageID)
	case VerbCancel:
		b.handleCancel(action, chatID, messageID)
	case VerbAdminConfirm:
		b.handleAdminConfirm(action, actorID, chatID, messageID)
	case VerbAdminPublish:
		b.handleAdminPublish(action, actorID, chatID)
	}
}

func (b *Bot) storeFor(direction models.ReviewDirection) services.ReviewStore {
	if direction == models.DirectionMerchantToUser {
		return b.merchantReviews
	}
	return b.userReviews
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
