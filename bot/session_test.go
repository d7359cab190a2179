package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-review-server/models"
)

func TestSessionManagerLifecycle(t *testing.T) {
	m := NewSessionManager()

	session := m.Start(100, models.DirectionUserToMerchant, 42, 100, 7)
	assert.Equal(t, StateAwaitingRating, session.State)
	assert.Equal(t, uint(42), session.OrderID)
	assert.Equal(t, 7, session.PanelMessageID)

	got, ok := m.Get(100, models.DirectionUserToMerchant)
	require.True(t, ok)
	assert.Same(t, session, got)

	_, ok = m.Get(100, models.DirectionMerchantToUser)
	assert.False(t, ok, "directions never share sessions")

	m.Delete(100, models.DirectionUserToMerchant)
	_, ok = m.Get(100, models.DirectionUserToMerchant)
	assert.False(t, ok)
}

func TestSessionManagerStartReplaces(t *testing.T) {
	m := NewSessionManager()

	old := m.Start(100, models.DirectionUserToMerchant, 42, 100, 7)
	old.Ratings[models.DimAppearance] = 9

	fresh := m.Start(100, models.DirectionUserToMerchant, 43, 100, 8)
	got, ok := m.Get(100, models.DirectionUserToMerchant)
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Empty(t, got.Ratings)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManagerAwaitingText(t *testing.T) {
	m := NewSessionManager()

	u2m := m.Start(100, models.DirectionUserToMerchant, 42, 100, 7)
	m.Start(200, models.DirectionUserToMerchant, 50, 200, 9)

	_, ok := m.AwaitingText(100)
	assert.False(t, ok)

	u2m.State = StateAwaitingText
	got, ok := m.AwaitingText(100)
	require.True(t, ok)
	assert.Same(t, u2m, got)

	_, ok = m.AwaitingText(200)
	assert.False(t, ok, "text routing is per chat")
}

func TestSessionNextDimensionWalkOrder(t *testing.T) {
	session := &ReviewSession{
		Direction: models.DirectionMerchantToUser,
		Ratings:   map[string]int{},
	}

	for _, expected := range models.DirectionMerchantToUser.Dimensions() {
		dim, missing := session.NextDimension()
		require.True(t, missing)
		assert.Equal(t, expected, dim)
		session.Ratings[dim] = 5
	}

	assert.True(t, session.Complete())
	_, missing := session.NextDimension()
	assert.False(t, missing)
}

func TestSessionManagerPruneIdle(t *testing.T) {
	m := NewSessionManager()

	stale := m.Start(100, models.DirectionUserToMerchant, 42, 100, 7)
	stale.LastActivity = time.Now().Add(-2 * time.Hour)
	m.Start(200, models.DirectionMerchantToUser, 50, 200, 9)

	pruned := m.PruneIdle(time.Hour)
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(100, models.DirectionUserToMerchant)
	assert.False(t, ok)
	_, ok = m.Get(200, models.DirectionMerchantToUser)
	assert.True(t, ok)
}
