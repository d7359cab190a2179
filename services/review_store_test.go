package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-review-server/database"
	"marketplace-review-server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func validU2MScores() map[string]int {
	return map[string]int{
		models.DimAppearance:  8,
		models.DimFigure:      7,
		models.DimService:     9,
		models.DimAttitude:    6,
		models.DimEnvironment: 8,
	}
}

func validM2UScores() map[string]int {
	return map[string]int{
		models.DimAttackQuality:   5,
		models.DimLength:          6,
		models.DimHardness:        7,
		models.DimDuration:        8,
		models.DimUserTemperament: 9,
	}
}

func TestUserReviewStoreCreateAndGet(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	text := "  great experience  "
	id, ok := store.Create(CreateReviewParams{
		OrderID:    11,
		MerchantID: 3,
		UserID:     100500,
		Scores:     validU2MScores(),
		Text:       &text,
		Anonymous:  true,
	})
	require.True(t, ok)
	require.NotZero(t, id)

	record := store.GetByOrderID(11)
	require.NotNil(t, record)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, models.DirectionUserToMerchant, record.Direction)
	assert.Equal(t, uint(3), record.MerchantID)
	assert.Equal(t, int64(100500), record.UserID)
	assert.Equal(t, validU2MScores(), record.Scores)
	require.NotNil(t, record.Text)
	assert.Equal(t, text, *record.Text)
	assert.True(t, record.IsAnonymous)
	assert.True(t, record.IsActive)
	assert.False(t, record.IsConfirmedByAdmin)
	assert.Nil(t, record.ReportPostURL)
}

func TestUserReviewStoreBlankTextStoredAsAbsent(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	blank := "   \n\t "
	id, ok := store.Create(CreateReviewParams{
		OrderID: 12, MerchantID: 1, UserID: 7,
		Scores: validU2MScores(), Text: &blank,
	})
	require.True(t, ok)

	record := store.GetByID(id)
	require.NotNil(t, record)
	assert.Nil(t, record.Text)
}

func TestUserReviewStoreCreateRejectsInvalidScores(t *testing.T) {
	db := newTestDB(t)
	store := NewUserReviewStore(db)

	scores := validU2MScores()
	scores[models.DimFigure] = 11
	id, ok := store.Create(CreateReviewParams{
		OrderID: 13, MerchantID: 1, UserID: 7, Scores: scores,
	})
	assert.False(t, ok)
	assert.Zero(t, id)

	// Missing dimension is rejected the same way
	scores = validU2MScores()
	delete(scores, models.DimService)
	_, ok = store.Create(CreateReviewParams{
		OrderID: 13, MerchantID: 1, UserID: 7, Scores: scores,
	})
	assert.False(t, ok)

	var count int64
	db.Model(&models.UserReview{}).Count(&count)
	assert.Zero(t, count, "rejected submissions must not leave rows behind")
}

func TestUserReviewStoreCreateUpsertsByOrder(t *testing.T) {
	db := newTestDB(t)
	store := NewUserReviewStore(db)

	first, ok := store.Create(CreateReviewParams{
		OrderID: 20, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, ok)

	updated := validU2MScores()
	updated[models.DimAppearance] = 1
	text := "changed my mind"
	second, ok := store.Create(CreateReviewParams{
		OrderID: 20, MerchantID: 2, UserID: 55,
		Scores: updated, Text: &text, Anonymous: true,
	})
	require.True(t, ok)
	assert.Equal(t, first, second, "resubmission must update the same row")

	var count int64
	db.Model(&models.UserReview{}).Where("order_id = ?", 20).Count(&count)
	assert.EqualValues(t, 1, count)

	record := store.GetByOrderID(20)
	require.NotNil(t, record)
	assert.Equal(t, 1, record.Scores[models.DimAppearance])
	require.NotNil(t, record.Text)
	assert.Equal(t, text, *record.Text)
	assert.True(t, record.IsAnonymous)
}

func TestUserReviewStoreConfirmedRowRefusesUpsert(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	id, ok := store.Create(CreateReviewParams{
		OrderID: 21, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, ok)
	require.True(t, store.ConfirmByAdmin(id, 999))

	_, ok = store.Create(CreateReviewParams{
		OrderID: 21, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	assert.False(t, ok, "confirmed review must not be overwritten")
}

func TestUserReviewStoreConfirmIsIdempotent(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	id, _ := store.Create(CreateReviewParams{
		OrderID: 22, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, store.ConfirmByAdmin(id, 999))

	first := store.GetByID(id)
	require.NotNil(t, first)
	require.NotNil(t, first.ConfirmedByAdminID)
	assert.EqualValues(t, 999, *first.ConfirmedByAdminID)
	require.NotNil(t, first.ConfirmedAt)

	// A second confirmation, even by another admin, changes nothing.
	require.True(t, store.ConfirmByAdmin(id, 111))
	second := store.GetByID(id)
	assert.EqualValues(t, 999, *second.ConfirmedByAdminID)
	assert.Equal(t, first.ConfirmedAt.Unix(), second.ConfirmedAt.Unix())
}

func TestUserReviewStoreConfirmRefusesDeleted(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	id, _ := store.Create(CreateReviewParams{
		OrderID: 23, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, store.SoftDelete(id))
	assert.False(t, store.ConfirmByAdmin(id, 999))
}

func TestUserReviewStoreSoftDeleteHidesFromOrderLookup(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	id, _ := store.Create(CreateReviewParams{
		OrderID: 24, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, store.SoftDelete(id))

	assert.Nil(t, store.GetByOrderID(24), "deleted rows leave the order slot free")
	record := store.GetByID(id)
	require.NotNil(t, record, "deleted rows stay reachable by id")
	assert.True(t, record.IsDeleted)

	// The freed slot accepts a fresh review under a new id.
	fresh, ok := store.Create(CreateReviewParams{
		OrderID: 24, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})
	require.True(t, ok)
	assert.NotEqual(t, id, fresh)
}

func TestUserReviewStoreListByEntity(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	text := "visible only to admins"
	confirmed, _ := store.Create(CreateReviewParams{
		OrderID: 30, MerchantID: 5, UserID: 1, Scores: validU2MScores(), Text: &text,
	})
	require.True(t, store.ConfirmByAdmin(confirmed, 999))

	pending, _ := store.Create(CreateReviewParams{
		OrderID: 31, MerchantID: 5, UserID: 2, Scores: validU2MScores(),
	})

	hidden, _ := store.Create(CreateReviewParams{
		OrderID: 32, MerchantID: 5, UserID: 3, Scores: validU2MScores(),
	})
	require.True(t, store.ConfirmByAdmin(hidden, 999))
	require.True(t, store.ToggleActive(hidden))

	otherMerchant, _ := store.Create(CreateReviewParams{
		OrderID: 33, MerchantID: 6, UserID: 1, Scores: validU2MScores(),
	})
	require.True(t, store.ConfirmByAdmin(otherMerchant, 999))

	public := store.ListByEntity(5, 10, 0, false)
	require.Len(t, public, 1)
	assert.Equal(t, confirmed, public[0].ID)
	assert.Nil(t, public[0].Text, "listings carry scores only")

	all := store.ListByEntity(5, 10, 0, true)
	assert.Len(t, all, 3)

	ids := make([]uint, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, pending)
	assert.Contains(t, ids, hidden)
}

func TestUserReviewStoreReportMeta(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	id, _ := store.Create(CreateReviewParams{
		OrderID: 40, MerchantID: 2, UserID: 55, Scores: validU2MScores(),
	})

	require.True(t, store.SetReportLink(id, "https://t.me/reports/10"))
	record := store.GetByID(id)
	require.NotNil(t, record.ReportPostURL)
	assert.Equal(t, "https://t.me/reports/10", *record.ReportPostURL)
	assert.Nil(t, record.ReportMessageID, "link alone does not imply recorded message meta")

	publishedAt := record.CreatedAt
	require.True(t, store.SetReportMeta(id, "https://t.me/reports/11", 11, publishedAt))
	record = store.GetByID(id)
	assert.Equal(t, "https://t.me/reports/11", *record.ReportPostURL)
	require.NotNil(t, record.ReportMessageID)
	assert.Equal(t, 11, *record.ReportMessageID)
	require.NotNil(t, record.PublishedAt)
}

func TestUserReviewStoreUpdatesRefuseMissingRow(t *testing.T) {
	store := NewUserReviewStore(newTestDB(t))

	text := "orphan"
	assert.False(t, store.UpdateScores(424242, validU2MScores()))
	assert.False(t, store.UpdateText(424242, &text))
	assert.False(t, store.SetAnonymous(424242, true))
	assert.False(t, store.SoftDelete(424242))
	assert.False(t, store.SetReportLink(424242, "https://t.me/reports/1"))
	assert.False(t, store.SetReportMeta(424242, "https://t.me/reports/1", 1, time.Now()))
}

func TestMerchantReviewStoreUpdatesRefuseMissingRow(t *testing.T) {
	store := NewMerchantReviewStore(newTestDB(t))

	assert.False(t, store.SoftDelete(424242))
	assert.False(t, store.SetAnonymous(424242, true))
}

func TestMerchantReviewStoreRoundTrip(t *testing.T) {
	store := NewMerchantReviewStore(newTestDB(t))
	assert.Equal(t, models.DirectionMerchantToUser, store.Direction())

	id, ok := store.Create(CreateReviewParams{
		OrderID: 50, MerchantID: 4, UserID: 777, Scores: validM2UScores(),
	})
	require.True(t, ok)

	record := store.GetByOrderID(50)
	require.NotNil(t, record)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, validM2UScores(), record.Scores)
}

func TestMerchantReviewStoreListsByCustomer(t *testing.T) {
	store := NewMerchantReviewStore(newTestDB(t))

	id, _ := store.Create(CreateReviewParams{
		OrderID: 51, MerchantID: 4, UserID: 777, Scores: validM2UScores(),
	})
	require.True(t, store.ConfirmByAdmin(id, 999))

	other, _ := store.Create(CreateReviewParams{
		OrderID: 52, MerchantID: 4, UserID: 888, Scores: validM2UScores(),
	})
	require.True(t, store.ConfirmByAdmin(other, 999))

	records := store.ListByEntity(777, 10, 0, false)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
}

func TestAnonymityIsPerDirection(t *testing.T) {
	db := newTestDB(t)
	userStore := NewUserReviewStore(db)
	merchantStore := NewMerchantReviewStore(db)

	u2m, _ := userStore.Create(CreateReviewParams{
		OrderID: 60, MerchantID: 4, UserID: 777,
		Scores: validU2MScores(), Anonymous: true,
	})
	m2u, _ := merchantStore.Create(CreateReviewParams{
		OrderID: 60, MerchantID: 4, UserID: 777,
		Scores: validM2UScores(), Anonymous: false,
	})

	assert.True(t, userStore.GetByID(u2m).IsAnonymous)
	assert.False(t, merchantStore.GetByID(m2u).IsAnonymous)

	require.True(t, merchantStore.SetAnonymous(m2u, true))
	assert.True(t, merchantStore.GetByID(m2u).IsAnonymous)
	assert.True(t, userStore.GetByID(u2m).IsAnonymous, "flipping one direction leaves the other untouched")
}

func TestOrderServiceStatusTransition(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db)

	require.NoError(t, db.Create(&models.Order{
		CustomerUserID: 777,
		MerchantID:     4,
		MerchantChatID: "555",
		Status:         models.OrderStatusAttempted,
	}).Error)

	order := orders.GetOrder(1)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderStatusAttempted, order.Status)
	assert.Nil(t, order.CompletedAt)

	require.True(t, orders.UpdateOrderStatus(1, models.OrderStatusCompleted))
	order = orders.GetOrder(1)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)

	assert.Nil(t, orders.GetOrder(424242))
}
