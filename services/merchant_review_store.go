package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"marketplace-review-server/models"
)

// MerchantReviewStore persists merchant -> customer reviews.
type MerchantReviewStore struct {
	db *gorm.DB
}

// NewMerchantReviewStore creates a store over the given database handle.
func NewMerchantReviewStore(db *gorm.DB) *MerchantReviewStore {
	return &MerchantReviewStore{db: db}
}

// Direction returns the direction this store is scoped to.
func (s *MerchantReviewStore) Direction() models.ReviewDirection {
	return models.DirectionMerchantToUser
}

// Create inserts a review for the order, or updates the existing one.
// Exactly one non-deleted row per order is kept; a confirmed row is
// immutable and refuses the upsert.
func (s *MerchantReviewStore) Create(p CreateReviewParams) (uint, bool) {
	if key, ok := validateScores(s.Direction(), p.Scores); !ok {
		log.Printf("❌ review store [%s] create rejected: invalid rating %q for order %d", s.Direction(), key, p.OrderID)
		return 0, false
	}
	text := normalizeText(p.Text)

	var existing models.MerchantReview
	err := s.db.Where("order_id = ? AND is_deleted = ?", p.OrderID, false).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsConfirmedByAdmin {
			log.Printf("⚠️ review store [%s] create refused: review %d for order %d already confirmed", s.Direction(), existing.ID, p.OrderID)
			return 0, false
		}
		existing.SetScores(p.Scores)
		updates := map[string]interface{}{
			"attack_quality":   existing.AttackQuality,
			"length":           existing.Length,
			"hardness":         existing.Hardness,
			"duration":         existing.Duration,
			"user_temperament": existing.UserTemperament,
			"text":             text,
			"is_anonymous":     p.Anonymous,
			"updated_at":       time.Now(),
		}
		if err := s.db.Model(&models.MerchantReview{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			logStoreError(s.Direction(), "create(update)", err, "order_id", p.OrderID)
			return 0, false
		}
		return existing.ID, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		review := models.MerchantReview{
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
func (s *MerchantReviewStore) GetByOrderID(orderID uint) *ReviewRecord {
	var review models.MerchantReview
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
func (s *MerchantReviewStore) GetByID(id uint) *ReviewRecord {
	var review models.MerchantReview
	if err := s.db.First(&review, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logStoreError(s.Direction(), "get_by_id", err, "id", id)
		}
		return nil
	}
	return s.toRecord(&review)
}

// ListByEntity returns reviews about the customer, newest first, text omitted.
func (s *MerchantReviewStore) ListByEntity(entityID int64, limit, offset int, adminMode bool) []ReviewRecord {
	query := s.db.Model(&models.MerchantReview{}).Where("user_id = ?", entityID)
	if !adminMode {
		query = query.Where("is_confirmed_by_admin = ? AND is_active = ? AND is_deleted = ?", true, true, false)
	}

	var reviews []models.MerchantReview
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		logStoreError(s.Direction(), "list_by_entity", err, "user_id", entityID)
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
func (s *MerchantReviewStore) UpdateScores(id uint, scores map[string]int) bool {
	if key, ok := validateScores(s.Direction(), scores); !ok {
		log.Printf("❌ review store [%s] update_scores rejected: invalid rating %q for review %d", s.Direction(), key, id)
		return false
	}
	var review models.MerchantReview
	review.SetScores(scores)
	updates := map[string]interface{}{
		"attack_quality":   review.AttackQuality,
		"length":           review.Length,
		"hardness":         review.Hardness,
		"duration":         review.Duration,
		"user_temperament": review.UserTemperament,
		"updated_at":       time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "update_scores", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// UpdateText replaces the free-text annotation; blank text clears it.
func (s *MerchantReviewStore) UpdateText(id uint, text *string) bool {
	updates := map[string]interface{}{
		"text":       normalizeText(text),
		"updated_at": time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "update_text", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetAnonymous flips the anonymity flag for this direction only.
func (s *MerchantReviewStore) SetAnonymous(id uint, anonymous bool) bool {
	updates := map[string]interface{}{
		"is_anonymous": anonymous,
		"updated_at":   time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_anonymous", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// ConfirmByAdmin marks the review confirmed. Idempotent; refuses
// soft-deleted rows.
func (s *MerchantReviewStore) ConfirmByAdmin(id uint, adminID int64) bool {
	var review models.MerchantReview
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
	if err := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logStoreError(s.Direction(), "confirm_by_admin", err, "id", id)
		return false
	}
	return true
}

// ToggleActive flips the visibility flag.
func (s *MerchantReviewStore) ToggleActive(id uint) bool {
	var review models.MerchantReview
	if err := s.db.First(&review, id).Error; err != nil {
		logStoreError(s.Direction(), "toggle_active", err, "id", id)
		return false
	}
	updates := map[string]interface{}{
		"is_active":  !review.IsActive,
		"updated_at": time.Now(),
	}
	if err := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logStoreError(s.Direction(), "toggle_active", err, "id", id)
		return false
	}
	return true
}

// SoftDelete marks the row deleted; it is never removed physically.
func (s *MerchantReviewStore) SoftDelete(id uint) bool {
	updates := map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "soft_delete", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetReportLink records the public post URL without touching other
// publication fields.
func (s *MerchantReviewStore) SetReportLink(id uint, url string) bool {
	updates := map[string]interface{}{
		"report_post_url": url,
		"updated_at":      time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_report_link", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

// SetReportMeta records the full publication outcome.
func (s *MerchantReviewStore) SetReportMeta(id uint, url string, messageID int, publishedAt time.Time) bool {
	updates := map[string]interface{}{
		"report_post_url":   url,
		"report_message_id": messageID,
		"published_at":      publishedAt,
		"updated_at":        time.Now(),
	}
	result := s.db.Model(&models.MerchantReview{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logStoreError(s.Direction(), "set_report_meta", result.Error, "id", id)
		return false
	}
	return result.RowsAffected > 0
}

func (s *MerchantReviewStore) toRecord(r *models.MerchantReview) *ReviewRecord {
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
