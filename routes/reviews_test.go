package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-review-server/database"
	"marketplace-review-server/models"
	"marketplace-review-server/services"
)

func newRoutesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite exists per connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newReviewsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/reviews/:direction/:id", AdminGetReview)
	r.PATCH("/reviews/:direction/:id/active", AdminToggleReviewActive)
	r.DELETE("/reviews/:direction/:id", AdminDeleteReview)
	return r
}

func seedUserReview(t *testing.T, store services.ReviewStore) uint {
	t.Helper()
	id, created := store.Create(services.CreateReviewParams{
		OrderID:    1,
		MerchantID: 1,
		UserID:     777,
		Scores: map[string]int{
			models.DimAppearance:  8,
			models.DimFigure:      7,
			models.DimService:     9,
			models.DimAttitude:    6,
			models.DimEnvironment: 8,
		},
	})
	require.True(t, created)
	return id
}

func TestAdminToggleReviewActiveReturnsUpdatedRow(t *testing.T) {
	db := newRoutesTestDB(t)
	store := services.NewUserReviewStore(db)
	SetupStores(store, services.NewMerchantReviewStore(db))
	router := newReviewsRouter()

	seedUserReview(t, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/reviews/user_to_merchant/1/active", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":false`)

	record := store.GetByID(1)
	require.NotNil(t, record)
	assert.False(t, record.IsActive)
}

func TestAdminToggleReviewActiveMissingRow(t *testing.T) {
	db := newRoutesTestDB(t)
	SetupStores(services.NewUserReviewStore(db), services.NewMerchantReviewStore(db))
	router := newReviewsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/reviews/user_to_merchant/424242/active", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// vanishingStore reports a successful toggle but cannot reload the row,
// as when another moderator removes it between the two queries.
type vanishingStore struct {
	services.ReviewStore
}

func (vanishingStore) ToggleActive(id uint) bool              { return true }
func (vanishingStore) GetByID(id uint) *services.ReviewRecord { return nil }

func TestAdminToggleReviewActiveRowGoneAfterToggle(t *testing.T) {
	SetupStores(vanishingStore{}, vanishingStore{})
	router := newReviewsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/reviews/user_to_merchant/1/active", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.NotContains(t, w.Body.String(), `"review"`)
}

func TestAdminDeleteReviewMissingRow(t *testing.T) {
	db := newRoutesTestDB(t)
	SetupStores(services.NewUserReviewStore(db), services.NewMerchantReviewStore(db))
	router := newReviewsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/reviews/merchant_to_user/424242", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminGetReviewInvalidDirection(t *testing.T) {
	db := newRoutesTestDB(t)
	SetupStores(services.NewUserReviewStore(db), services.NewMerchantReviewStore(db))
	router := newReviewsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/sideways/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
