package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"marketplace-review-server/models"
)

// UserReviewStore persists customer -> merchant reviews.
type UserReviewStore struct {
	db *gorm.DB
}

// NewUserReviewStore creates a store over the given database handle.
func NewUserReviewStore(db *gorm.DB) *UserReviewStore {
	return &UserReviewStore{db: db}
}

// Direction returns the direction this store is scoped to.
func (s *UserReviewStore) Direction() models.ReviewDirection {
	return models.DirectionUserToMerchant
}

// Create inserts a review for the order, or updates the existing one.
// Exactly one non-deleted row per order is kept; a confirmed row is
// immutable and refuses the upsert.
func (s *UserReviewStore) Create(p CreateReviewParams) (uint, bool) {
	if key, ok := validateScores(s.Direction(), p.Scores); !ok {
		log.Printf("❌ review store [%s] create rejected: invalid rating %q for order %d", s.Direction(), key, p.OrderID)
		return 0, false
	}
	text := normalizeText(p.Text)

	var existing models.UserReview
	err := s.db.Where("order_id = ? AND is_deleted = ?", p.OrderID, false).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsConfirmedByAdmin {
			log.Printf("⚠️ review store [%s] create refused: review %d for order %d already confirmed", s.Direction(), existing.ID, p.OrderID)
			return 0, false
		}
		existing.SetScores(p.Scores)
		updates := map[string]interface{}{
			"appearance":   existing.Appearance,
			"figure":       existing.Figure,
			"service":      existing.Service,
			"attitude":     existing.Attitude,
			"environment":  existing.Environment,
			"text":         text,
			"is_anonymous": p.Anonymous,
			"updated_at":   time.Now(),
		}
		if err := s.db.Model(&models.UserReview{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			logStoreError(s.Direction(), "create(update)", err, "order_id", p.OrderID)
			return 0, false
		}
		return existing.ID, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		review := models.UserReview{
			OrderID:     p.OrderID,
			MerchantID:  p.MerchantID,
			UserID:      p.UserID,
			Text:        text,
			IsAnonymous: p.Anonymous,
			IsActive:    true,
		}
		review.SetScores(p.Scores)
		if err := s.db.Create(&review).Error; err != nil {
			logStoreError(s.Direction(), "create", err, "order_id", p.OrderID)
			return 0, false
		}
		return review.ID, true
	default:
		logStoreError(s.Direction(), "create(lookup)", err, "order_id", p.OrderID)
		return 0, false
	}
}

// GetByOrderID returns the non-deleted review for the order, if any.
func (s *UserReviewStore) GetByOrderID(orderID uint) *ReviewRecord {
	var review models.UserReview
	err := s.db.Where("order_id = ? AND is_deleted = ?", orderID, false).First(&review).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logStoreError(s.Direction(), "get_by_order_id", err, "order_id", orderID)
		}
		return nil
	}
	return s.toRecord(&review)
}

// GetByID returns the review by primary key, deleted rows included.
func (s *UserReviewStore) GetByID(id uint) *ReviewRecord {
	var review models.UserReview
	if err := s.db.First(&review, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logStoreError(s.Direction(), "get_by_id", err, "id", id)
		}
		return nil
	}
	return s.toRecord(&review)
}

// ListByEntity returns reviews about the merchant, newest first, text omitted.
func (s *UserReviewStore) ListByEntity(entityID int64, limit, offset int, adminMode bool) []ReviewRecord {
	query := s.db.Model(&models.UserReview{}).Where("merchant_id = ?", uint(entityID))
	if !adminMode {
		query = query.Where("is_confirmed_by_admin = ? AND is_active = ? AND is_deleted = ?", true, true, false)
	}

	var reviews []models.UserReview
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		logStoreError(s.Direction(), "list_by_entity", err, "merchant_id", entityID)
		return nil
	}

	records := make([]ReviewRecord, 0, len(reviews))
	for i := range reviews {
		record := s.toRecord(&reviews[i])
		record.Text = nil // listings carry scores only
		records = append(records, *record)
	}
	return records
}

// UpdateScores replaces the full rating vector.
func (s *UserReviewStore) UpdateScores(id uint, scores map[string]int) bool {
	if key, ok := validateScores(s.Direction(), scores); !ok {
		log.Printf("❌ review store [%s] update_scores rejected: invalid rating %q for review %d", s.Direction(), key, id)
		return false
	}
	var review models.UserReview
	review.SetScores(scores)
	updates := map[string]interface{}{
		"appearance":  review.Appearance,
		"figure":      review.Figure,
		"service":     review.Service,
		"attitude":    review.Attitude,
		"environment": review.Environment,
		"updated_at":  time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "update_scores", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// UpdateText replaces the free-text annotation; blank text clears it.
func (s *UserReviewStore) UpdateText(id uint, text *string) bool {
	updates := map[string]interface{}{
		"text":       normalizeText(text),
		"updated_at": time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "update_text", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetAnonymous flips the anonymity flag for this direction only.
func (s *UserReviewStore) SetAnonymous(id uint, anonymous bool) bool {
	updates := map[string]interface{}{
		"is_anonymous": anonymous,
		"updated_at":   time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_anonymous", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// ConfirmByAdmin marks the review confirmed. Idempotent; refuses
// soft-deleted rows.
func (s *UserReviewStore) ConfirmByAdmin(id uint, adminID int64) bool {
	var review models.UserReview
	if err := s.db.First(&review, id).Error; err != nil {
		logStoreError(s.Direction(), "confirm_by_admin", err, "id", id)
		return false
	}
	if review.IsDeleted {
		log.Printf("⚠️ review store [%s] confirm refused: review %d is deleted", s.Direction(), id)
		return false
	}
	if review.IsConfirmedByAdmin {
		return true
	}
	now := time.Now()
	updates := map[string]interface{}{
		"is_confirmed_by_admin": true,
		"confirmed_by_admin_id": adminID,
		"confirmed_at":          now,
		"updated_at":            now,
	}
	if err := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logStoreError(s.Direction(), "confirm_by_admin", err, "id", id)
		return false
	}
	return true
}

// ToggleActive flips the visibility flag.
func (s *UserReviewStore) ToggleActive(id uint) bool {
	var review models.UserReview
	if err := s.db.First(&review, id).Error; err != nil {
		logStoreError(s.Direction(), "toggle_active", err, "id", id)
		return false
	}
	updates := map[string]interface{}{
		"is_active":  !review.IsActive,
		"updated_at": time.Now(),
	}
	if err := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logStoreError(s.Direction(), "toggle_active", err, "id", id)
		return false
	}
	return true
}

// SoftDelete marks the row deleted; it is never removed physically.
func (s *UserReviewStore) SoftDelete(id uint) bool {
	updates := map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "soft_delete", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetReportLink records the public post URL without touching other
// publication fields.
func (s *UserReviewStore) SetReportLink(id uint, url string) bool {
	updates := map[string]interface{}{
		"report_post_url": url,
		"updated_at":      time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_report_link", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetReportMeta records the full publication outcome.
func (s *UserReviewStore) SetReportMeta(id uint, url string, messageID int, publishedAt time.Time) bool {
	updates := map[string]interface{}{
		"report_post_url":   url,
		"report_message_id": messageID,
		"published_at":      publishedAt,
		"updated_at":        time.Now(),
	}
	result := s.db.Model(&models.UserReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_report_meta", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

func (s *UserReviewStore) toRecord(r *models.UserReview) *ReviewRecord {
	return &ReviewRecord{
		ID:                 r.ID,
		Direction:          s.Direction(),
		OrderID:            r.OrderID,
		MerchantID:         r.MerchantID,
		UserID:             r.UserID,
		Scores:             r.Scores(),
		Text:               r.Text,
		IsAnonymous:        r.IsAnonymous,
		IsConfirmedByAdmin: r.IsConfirmedByAdmin,
		ConfirmedByAdminID: r.ConfirmedByAdminID,
		ConfirmedAt:        r.ConfirmedAt,
		IsActive:           r.IsActive,
		IsDeleted:          r.IsDeleted,
		ReportPostURL:      r.ReportPostURL,
		ReportMessageID:    r.ReportMessageID,
		PublishedAt:        r.PublishedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
