package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-review-server/models"
)

func TestActionEncodeParseRoundTrip(t *testing.T) {
	actions := []Action{
		{Direction: models.DirectionUserToMerchant, Verb: VerbStart, OrderID: 42},
		{Direction: models.DirectionMerchantToUser, Verb: VerbStart, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbRate, OrderID: 42, Dimension: models.DimFigure, Value: 10},
		{Direction: models.DirectionMerchantToUser, Verb: VerbRate, OrderID: 7, Dimension: models.DimHardness, Value: 1},
		{Direction: models.DirectionUserToMerchant, Verb: VerbText, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbSubmit, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbSubmitAnon, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbSubmitPublic, OrderID: 42},
		{Direction: models.DirectionMerchantToUser, Verb: VerbReset, OrderID: 42},
		{Direction: models.DirectionMerchantToUser, Verb: VerbBackSubmit, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbCancel, OrderID: 42},
		{Direction: models.DirectionUserToMerchant, Verb: VerbAdminConfirm, ReviewID: 9001},
		{Direction: models.DirectionMerchantToUser, Verb: VerbAdminPublish, ReviewID: 9001},
	}

	for _, action := range actions {
		encoded := action.Encode()
		assert.LessOrEqual(t, len(encoded), 64, "callback data for %q must fit Telegram's limit", encoded)

		parsed, ok := ParseAction(encoded)
		require.True(t, ok, "failed to parse %q", encoded)
		assert.Equal(t, action, parsed)
	}
}

func TestParseActionRejectsMalformedData(t *testing.T) {
	malformed := []string{
		"",
		"u2m",
		"u2m:start",
		"xyz:start:42",
		"u2m:unknown:42",
		"u2m:start:notanumber",
		"u2m:start:-1",
		"u2m:rate:42",
		"u2m:rate:42:figure",
		"u2m:rate:42:figure:x",
		"u2m:rate:xx:figure:5",
		"u2m:rate:42:figure:5:extra",
		"u2m:start:42:extra",
		"m2u:adm_confirm:abc",
		"m2u:adm_confirm:1:2",
		"plain text",
	}

	for _, data := range malformed {
		_, ok := ParseAction(data)
		assert.False(t, ok, "expected %q to be rejected", data)
	}
}

func TestParseActionKeepsRateArguments(t *testing.T) {
	action, ok := ParseAction("m2u:rate:5:duration:12")
	require.True(t, ok, "rate parsing is syntactic, range checks happen in the handler")
	assert.Equal(t, models.DirectionMerchantToUser, action.Direction)
	assert.Equal(t, uint(5), action.OrderID)
	assert.Equal(t, models.DimDuration, action.Dimension)
	assert.Equal(t, 12, action.Value)
}
