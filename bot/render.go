package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketplace-review-server/models"
	"marketplace-review-server/services"
)

// textPreviewLimit caps how much of the free-text draft the submit-ready
// panel shows.
const textPreviewLimit = 200

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func directionTitle(direction models.ReviewDirection) string {
	if direction == models.DirectionMerchantToUser {
		return "Review of the customer"
	}
	return "Review of the merchant"
}

// ratingPromptText renders the prompt for one dimension, with progress.
func ratingPromptText(session *ReviewSession, dimension string) string {
	dims := session.Direction.Dimensions()
	position := 0
	for i, dim := range dims {
		if dim == dimension {
			position = i + 1
			break
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s — order #%d\n\n", directionTitle(session.Direction), session.OrderID)
	for _, dim := range dims {
		if value, ok := session.Ratings[dim]; ok {
			fmt.Fprintf(&sb, "%s: %d\n", models.DimensionLabel(dim), value)
		}
	}
	fmt.Fprintf(&sb, "\nStep %d of %d: rate %s (1–10)", position, len(dims), models.DimensionLabel(dimension))
	return sb.String()
}

// ratingKeyboard builds the 1–10 keypad for one dimension.
func ratingKeyboard(direction models.ReviewDirection, orderID uint, dimension string) tgbotapi.InlineKeyboardMarkup {
	row1 := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	row2 := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for v := models.MinScore; v <= models.MaxScore; v++ {
		action := Action{Direction: direction, Verb: VerbRate, OrderID: orderID, Dimension: dimension, Value: v}
		button := tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", v), action.Encode())
		if v <= 5 {
			row1 = append(row1, button)
		} else {
			row2 = append(row2, button)
		}
	}
	cancel := Action{Direction: direction, Verb: VerbCancel, OrderID: orderID}
	return tgbotapi.NewInlineKeyboardMarkup(
		row1,
		row2,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cancel.Encode()),
		),
	)
}

// submitReadyText renders the collected vector plus a draft preview.
func submitReadyText(session *ReviewSession) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s — order #%d\n\n", directionTitle(session.Direction), session.OrderID)
	for _, dim := range session.Direction.Dimensions() {
		fmt.Fprintf(&sb, "%s: %d\n", models.DimensionLabel(dim), session.Ratings[dim])
	}
	if session.TextDraft != nil {
		fmt.Fprintf(&sb, "\nComment: %s\n", truncate(*session.TextDraft, textPreviewLimit))
	}
	sb.WriteString("\nAll set. Submit the review, add a comment, or start over.")
	return sb.String()
}

func submitReadyKeyboard(direction models.ReviewDirection, orderID uint) tgbotapi.InlineKeyboardMarkup {
	submit := Action{Direction: direction, Verb: VerbSubmit, OrderID: orderID}
	text := Action{Direction: direction, Verb: VerbText, OrderID: orderID}
	reset := Action{Direction: direction, Verb: VerbReset, OrderID: orderID}
	cancel := Action{Direction: direction, Verb: VerbCancel, OrderID: orderID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Submit", submit.Encode()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Add comment", text.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", reset.Encode()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cancel.Encode()),
		),
	)
}

func textPromptText(session *ReviewSession) string {
	return fmt.Sprintf("%s — order #%d\n\nSend your comment as a regular message. An empty message leaves the review without a comment.",
		directionTitle(session.Direction), session.OrderID)
}

func textPromptKeyboard(direction models.ReviewDirection, orderID uint) tgbotapi.InlineKeyboardMarkup {
	back := Action{Direction: direction, Verb: VerbBackSubmit, OrderID: orderID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", back.Encode()),
		),
	)
}

func anonymityText(session *ReviewSession) string {
	return fmt.Sprintf("%s — order #%d\n\nPublish the review with your name, or anonymously?",
		directionTitle(session.Direction), session.OrderID)
}

func anonymityKeyboard(direction models.ReviewDirection, orderID uint) tgbotapi.InlineKeyboardMarkup {
	anon := Action{Direction: direction, Verb: VerbSubmitAnon, OrderID: orderID}
	public := Action{Direction: direction, Verb: VerbSubmitPublic, OrderID: orderID}
	back := Action{Direction: direction, Verb: VerbBackSubmit, OrderID: orderID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕶 Anonymous", anon.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("👤 Public", public.Encode()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", back.Encode()),
		),
	)
}

// reviewAdminText renders the complete review for the moderator broadcast.
func reviewAdminText(record *services.ReviewRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s — order #%d\n", directionTitle(record.Direction), record.OrderID)
	fmt.Fprintf(&sb, "Merchant #%d, customer %d\n\n", record.MerchantID, record.UserID)
	for _, dim := range record.Direction.Dimensions() {
		fmt.Fprintf(&sb, "%s: %d\n", models.DimensionLabel(dim), record.Scores[dim])
	}
	if record.Text != nil {
		fmt.Fprintf(&sb, "\nComment: %s\n", *record.Text)
	}
	if record.IsAnonymous {
		sb.WriteString("\nSubmitted anonymously.")
	}
	if record.IsConfirmedByAdmin {
		sb.WriteString("\nStatus: confirmed.")
	} else {
		sb.WriteString("\nStatus: pending confirmation.")
	}
	return sb.String()
}

func adminConfirmKeyboard(direction models.ReviewDirection, reviewID uint) tgbotapi.InlineKeyboardMarkup {
	confirm := Action{Direction: direction, Verb: VerbAdminConfirm, ReviewID: reviewID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", confirm.Encode()),
		),
	)
}

func adminRepublishKeyboard(direction models.ReviewDirection, reviewID uint) tgbotapi.InlineKeyboardMarkup {
	publish := Action{Direction: direction, Verb: VerbAdminPublish, ReviewID: reviewID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 Publish again", publish.Encode()),
		),
	)
}
