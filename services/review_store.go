package services

import (
	"log"
	"strings"
	"time"

	"marketplace-review-server/models"
)

// ReviewRecord is the direction-neutral view of a stored review.
// Scores is keyed by dimension; iterate Direction.Dimensions() for the
// fixed walk order.
type ReviewRecord struct {
	ID         uint
	Direction  models.ReviewDirection
	OrderID    uint
	MerchantID uint
	UserID     int64

	Scores      map[string]int
	Text        *string
	IsAnonymous bool

	IsConfirmedByAdmin bool
	ConfirmedByAdminID *int64
	ConfirmedAt        *time.Time

	IsActive  bool
	IsDeleted bool

	ReportPostURL   *string
	ReportMessageID *int
	PublishedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateReviewParams carries everything needed to persist one review.
type CreateReviewParams struct {
	OrderID    uint
	MerchantID uint
	UserID     int64
	Scores     map[string]int
	Text       *string
	Anonymous  bool
}

// ReviewStore is the persistence contract for one review direction.
//
// Every operation converts underlying persistence failures into a zero
// return value after logging; callers never see a raw database error.
// Create is an upsert keyed by order id: a second submission for the
// same order updates the existing row instead of adding one.
type ReviewStore interface {
	Direction() models.ReviewDirection
	Create(p CreateReviewParams) (uint, bool)
	GetByOrderID(orderID uint) *ReviewRecord
	GetByID(id uint) *ReviewRecord
	// ListByEntity returns reviews about one entity (merchant id for
	// user_to_merchant, customer Telegram id for merchant_to_user),
	// newest first, without the long text field. Non-admin mode filters
	// to confirmed, active, non-deleted rows.
	ListByEntity(entityID int64, limit, offset int, adminMode bool) []ReviewRecord
	UpdateScores(id uint, scores map[string]int) bool
	UpdateText(id uint, text *string) bool
	SetAnonymous(id uint, anonymous bool) bool
	// ConfirmByAdmin is idempotent: confirming an already confirmed
	// review succeeds without touching the original confirmation fields.
	// Soft-deleted rows are refused.
	ConfirmByAdmin(id uint, adminID int64) bool
	ToggleActive(id uint) bool
	SoftDelete(id uint) bool
	SetReportLink(id uint, url string) bool
	SetReportMeta(id uint, url string, messageID int, publishedAt time.Time) bool
}

// validateScores checks a full rating vector for the direction: every
// dimension present, every value inside [MinScore, MaxScore]. Returns the
// first offending dimension key on failure.
func validateScores(direction models.ReviewDirection, scores map[string]int) (string, bool) {
	for _, dim := range direction.Dimensions() {
		value, ok := scores[dim]
		if !ok {
			return dim, false
		}
		if !models.ValidScore(value) {
			return dim, false
		}
	}
	return "", true
}

// normalizeText treats blank or whitespace-only text as absent.
func normalizeText(text *string) *string {
	if text == nil {
		return nil
	}
	if strings.TrimSpace(*text) == "" {
		return nil
	}
	return text
}

func logStoreError(direction models.ReviewDirection, op string, err error, keys ...interface{}) {
	log.Printf("❌ review store [%s] %s failed (keys=%v): %v", direction, op, keys, err)
}
