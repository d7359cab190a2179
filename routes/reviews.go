package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-review-server/models"
	"marketplace-review-server/services"
)

var (
	userReviews     services.ReviewStore
	merchantReviews services.ReviewStore
)

// SetupStores wires the review stores the handlers read from
func SetupStores(u2m, m2u services.ReviewStore) {
	userReviews = u2m
	merchantReviews = m2u
}

func storeForDirection(direction string) services.ReviewStore {
	switch models.ReviewDirection(direction) {
	case models.DirectionUserToMerchant:
		return userReviews
	case models.DirectionMerchantToUser:
		return merchantReviews
	default:
		return nil
	}
}

func paginationParams(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return limit, (page - 1) * limit
}

// reviewJSON renders one record for API responses. Author identity is
// withheld for anonymous reviews unless the caller is an admin.
func reviewJSON(r services.ReviewRecord, adminMode bool) gin.H {
	out := gin.H{
		"id":           r.ID,
		"direction":    r.Direction,
		"order_id":     r.OrderID,
		"scores":       r.Scores,
		"is_anonymous": r.IsAnonymous,
		"is_confirmed": r.IsConfirmedByAdmin,
		"created_at":   r.CreatedAt,
	}

	if !r.IsAnonymous || adminMode {
		out["merchant_id"] = r.MerchantID
		out["user_id"] = r.UserID
	}

	if r.ReportPostURL != nil {
		out["report_post_url"] = *r.ReportPostURL
	}

	if adminMode {
		out["text"] = r.Text
		out["is_active"] = r.IsActive
		out["is_deleted"] = r.IsDeleted
		out["confirmed_by_admin_id"] = r.ConfirmedByAdminID
		out["confirmed_at"] = r.ConfirmedAt
		out["published_at"] = r.PublishedAt
		out["updated_at"] = r.UpdatedAt
	}

	return out
}

// GetMerchantReviews returns confirmed reviews about a merchant
func GetMerchantReviews(c *gin.Context) {
	merchantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merchant ID"})
		return
	}

	limit, offset := paginationParams(c)
	records := userReviews.ListByEntity(merchantID, limit, offset, false)

	reviews := make([]gin.H, 0, len(records))
	for _, r := range records {
		reviews = append(reviews, reviewJSON(r, false))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// GetUserReviews returns confirmed reviews about a customer
func GetUserReviews(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	limit, offset := paginationParams(c)
	records := merchantReviews.ListByEntity(userID, limit, offset, false)

	reviews := make([]gin.H, 0, len(records))
	for _, r := range records {
		reviews = append(reviews, reviewJSON(r, false))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// AdminGetReview returns one review with moderation fields
func AdminGetReview(c *gin.Context) {
	store := storeForDirection(c.Param("direction"))
	if store == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review direction"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	record := store.GetByID(uint(id))
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  reviewJSON(*record, true),
	})
}

// AdminListEntityReviews returns all reviews about one entity, including
// unconfirmed and deactivated rows. The entity is a merchant id for
// user_to_merchant reviews and a customer Telegram id for merchant_to_user.
func AdminListEntityReviews(c *gin.Context) {
	store := storeForDirection(c.Param("direction"))
	if store == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review direction"})
		return
	}

	entityID, err := strconv.ParseInt(c.Query("entity_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	limit, offset := paginationParams(c)
	records := store.ListByEntity(entityID, limit, offset, true)

	reviews := make([]gin.H, 0, len(records))
	for _, r := range records {
		reviews = append(reviews, reviewJSON(r, true))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// AdminToggleReviewActive flips a review's visibility flag
func AdminToggleReviewActive(c *gin.Context) {
	store := storeForDirection(c.Param("direction"))
	if store == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review direction"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	if !store.ToggleActive(uint(id)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	response := gin.H{
		"success": true,
		"message": "Review visibility updated",
	}
	if record := store.GetByID(uint(id)); record != nil {
		response["review"] = reviewJSON(*record, true)
	}
	c.JSON(http.StatusOK, response)
}

// AdminDeleteReview soft-deletes a review
func AdminDeleteReview(c *gin.Context) {
	store := storeForDirection(c.Param("direction"))
	if store == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review direction"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	if !store.SoftDelete(uint(id)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review deleted",
	})
}
