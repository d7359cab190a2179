package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-review-server/models"
)

// submitUserReview walks the customer direction to a submitted review and
// returns its id. It waits for the async moderator broadcast so later
// assertions on the admin's messages see a settled state.
func submitUserReview(t *testing.T, b *Bot, sender *fakeSender) uint {
	t.Helper()
	press(b, testCustomerID, testCustomerID, 7, startAction(models.DirectionUserToMerchant))
	rateAll(b, testCustomerID, testCustomerID, 7, models.DirectionUserToMerchant, []int{8, 7, 9, 6, 8})
	press(b, testCustomerID, testCustomerID, 7,
		Action{Direction: models.DirectionUserToMerchant, Verb: VerbSubmit, OrderID: 1}.Encode())
	press(b, testCustomerID, testCustomerID, 7,
		Action{Direction: models.DirectionUserToMerchant, Verb: VerbSubmitPublic, OrderID: 1}.Encode())

	require.Eventually(t, func() bool {
		return len(sender.messagesTo(testAdminID)) > 0
	}, time.Second, 10*time.Millisecond)

	record := b.userReviews.GetByOrderID(1)
	require.NotNil(t, record)
	return record.ID
}

func confirmAction(reviewID uint) string {
	return Action{Direction: models.DirectionUserToMerchant, Verb: VerbAdminConfirm, ReviewID: reviewID}.Encode()
}

func publishAction(reviewID uint) string {
	return Action{Direction: models.DirectionUserToMerchant, Verb: VerbAdminPublish, ReviewID: reviewID}.Encode()
}

func (f *fakeSender) channelPosts(chatID int64) int {
	return len(f.messagesTo(chatID))
}

func TestAdminConfirmPublishesAndNotifies(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	press(b, testAdminID, testAdminID, 50, confirmAction(reviewID))

	record := b.userReviews.GetByID(reviewID)
	require.NotNil(t, record)
	assert.True(t, record.IsConfirmedByAdmin)
	require.NotNil(t, record.ConfirmedByAdminID)
	assert.Equal(t, testAdminID, *record.ConfirmedByAdminID)

	require.NotNil(t, record.ReportPostURL)
	assert.Contains(t, *record.ReportPostURL, "https://t.me/merchant_reports/")
	assert.Equal(t, 1, sender.channelPosts(testChannelID))

	// The moderator panel now shows the republish control instead of confirm.
	assert.Contains(t, sender.lastEditText(), "Status: confirmed")

	receipts := sender.messagesTo(testAdminID)
	require.NotEmpty(t, receipts)
	assert.Contains(t, receipts[len(receipts)-1], "confirmed and published")

	// Both participants learn about the published link.
	require.Eventually(t, func() bool {
		return len(sender.messagesTo(testCustomerID)) > 0 && len(sender.messagesTo(testMerchantChat)) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, sender.messagesTo(testCustomerID)[0], *record.ReportPostURL)
	assert.Contains(t, sender.messagesTo(testMerchantChat)[0], *record.ReportPostURL)
}

func TestAdminConfirmRequiresModerator(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	press(b, 123456, 123456, 50, confirmAction(reviewID))

	record := b.userReviews.GetByID(reviewID)
	assert.False(t, record.IsConfirmedByAdmin)
	assert.Zero(t, sender.channelPosts(testChannelID))

	notices := sender.messagesTo(123456)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "Moderator access required")
}

func TestAdminDoubleConfirmIsIdempotent(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	press(b, testAdminID, testAdminID, 50, confirmAction(reviewID))
	first := b.userReviews.GetByID(reviewID)
	require.NotNil(t, first.ConfirmedAt)

	press(b, testAdminID, testAdminID, 50, confirmAction(reviewID))
	second := b.userReviews.GetByID(reviewID)
	assert.Equal(t, first.ConfirmedAt.Unix(), second.ConfirmedAt.Unix())
	assert.Equal(t, *first.ConfirmedByAdminID, *second.ConfirmedByAdminID)
	assert.Equal(t, *first.ReportPostURL, *second.ReportPostURL)
	assert.Equal(t, 1, sender.channelPosts(testChannelID), "confirming twice must not post twice")
}

func TestAdminConfirmUnknownReview(t *testing.T) {
	b, sender, _ := newTestBot(t)

	press(b, testAdminID, testAdminID, 50, confirmAction(424242))

	notices := sender.messagesTo(testAdminID)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "Review not found")
}

func TestAdminRepublishReplacesLink(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	press(b, testAdminID, testAdminID, 50, confirmAction(reviewID))
	firstURL := *b.userReviews.GetByID(reviewID).ReportPostURL

	press(b, testAdminID, testAdminID, 50, publishAction(reviewID))
	secondURL := *b.userReviews.GetByID(reviewID).ReportPostURL

	assert.NotEqual(t, firstURL, secondURL)
	assert.Equal(t, 2, sender.channelPosts(testChannelID))
}

func TestAdminPublishRequiresConfirmation(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	press(b, testAdminID, testAdminID, 50, publishAction(reviewID))

	assert.Zero(t, sender.channelPosts(testChannelID))
	notices := sender.messagesTo(testAdminID)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1], "Confirm the review first")
}

func TestAdminConfirmRefusesDeletedReview(t *testing.T) {
	b, sender, _ := newTestBot(t)
	reviewID := submitUserReview(t, b, sender)

	require.True(t, b.userReviews.SoftDelete(reviewID))
	press(b, testAdminID, testAdminID, 50, confirmAction(reviewID))

	record := b.userReviews.GetByID(reviewID)
	assert.False(t, record.IsConfirmedByAdmin)
	assert.Zero(t, sender.channelPosts(testChannelID))

	notices := sender.messagesTo(testAdminID)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1], "Could not confirm")
}
