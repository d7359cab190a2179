package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketplace-review-server/models"
)

// Transport is the minimal outbound surface the publisher needs.
// *tgbotapi.BotAPI satisfies it.
type Transport interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PublishService posts confirmed reviews to the public report channel and
// records the resulting link back through the review store.
type PublishService struct {
	transport       Transport
	channelID       int64
	channelUsername string
}

// NewPublishService creates a publisher targeting one channel.
func NewPublishService(transport Transport, channelID int64, channelUsername string) *PublishService {
	return &PublishService{
		transport:       transport,
		channelID:       channelID,
		channelUsername: channelUsername,
	}
}

// SetTransport installs the outbound client. Called once at startup,
// after the bot has authorized and before any publish can happen.
func (p *PublishService) SetTransport(t Transport) {
	p.transport = t
}

// Publish posts the review to the channel and returns the public URL.
// Unconfirmed reviews are refused. Publishing an already published review
// is a no-op returning the recorded URL unless rePublish is set, in which
// case a fresh post replaces the previous link without touching review
// rows beyond the publication fields.
func (p *PublishService) Publish(store ReviewStore, reviewID uint, rePublish bool) (string, bool) {
	record := store.GetByID(reviewID)
	if record == nil {
		log.Printf("❌ publish: review %d [%s] not found", reviewID, store.Direction())
		return "", false
	}
	if !record.IsConfirmedByAdmin {
		log.Printf("⚠️ publish refused: review %d [%s] not confirmed", reviewID, record.Direction)
		return "", false
	}
	if record.ReportPostURL != nil && !rePublish {
		return *record.ReportPostURL, true
	}
	if p.transport == nil {
		log.Printf("❌ publish: no transport configured, cannot post review %d", reviewID)
		return "", false
	}

	msg := tgbotapi.NewMessage(p.channelID, renderChannelPost(record))
	sent, err := p.transport.Send(msg)
	if err != nil {
		log.Printf("❌ publish: failed to post review %d [%s] to channel %d: %v", reviewID, record.Direction, p.channelID, err)
		return "", false
	}

	url := p.postURL(sent.MessageID)
	if !store.SetReportMeta(reviewID, url, sent.MessageID, time.Now()) {
		// The post exists either way; the link just was not recorded.
		log.Printf("⚠️ publish: posted review %d but failed to record report meta", reviewID)
	}
	return url, true
}

// postURL builds the public link for a channel message. Channels with a
// username get the t.me/<name>/<id> form; private channels fall back to
// the t.me/c/ form (channel id without the -100 prefix).
func (p *PublishService) postURL(messageID int) string {
	if p.channelUsername != "" {
		return fmt.Sprintf("https://t.me/%s/%d", strings.TrimPrefix(p.channelUsername, "@"), messageID)
	}
	internal := strings.TrimPrefix(fmt.Sprintf("%d", p.channelID), "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, messageID)
}

func renderChannelPost(record *ReviewRecord) string {
	var sb strings.Builder
	if record.Direction == models.DirectionMerchantToUser {
		fmt.Fprintf(&sb, "Customer review — order #%d\n", record.OrderID)
	} else {
		fmt.Fprintf(&sb, "Merchant review — order #%d\n", record.OrderID)
	}
	if record.IsAnonymous {
		sb.WriteString("Author: anonymous\n")
	} else if record.Direction == models.DirectionUserToMerchant {
		fmt.Fprintf(&sb, "Author: customer %d\n", record.UserID)
	} else {
		fmt.Fprintf(&sb, "Author: merchant #%d\n", record.MerchantID)
	}
	sb.WriteString("\n")
	for _, dim := range record.Direction.Dimensions() {
		fmt.Fprintf(&sb, "%s: %d/10\n", models.DimensionLabel(dim), record.Scores[dim])
	}
	if record.Text != nil {
		fmt.Fprintf(&sb, "\n%s\n", *record.Text)
	}
	return sb.String()
}
