package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID_PlainNumber(t *testing.T) {
	id := NormalizeID(7)
	assert.True(t, id.Valid)
	assert.Equal(t, int64(7), id.Value)
}

func TestNormalizeID_EmbeddedNumber(t *testing.T) {
	id := NormalizeID("ORD-2024-00042")
	assert.True(t, id.Valid)
	assert.Equal(t, int64(42), id.Value)
}

func TestNormalizeID_LastRunWins(t *testing.T) {
	id := NormalizeID("batch 12 ticket 345")
	assert.True(t, id.Valid)
	assert.Equal(t, int64(345), id.Value)
}

func TestNormalizeID_Nil(t *testing.T) {
	assert.False(t, NormalizeID(nil).Valid)
}

func TestNormalizeID_NoDigits(t *testing.T) {
	assert.False(t, NormalizeID("no-digits").Valid)
}

func TestNormalizeID_UnsupportedType(t *testing.T) {
	assert.False(t, NormalizeID(true).Valid)
}

func TestEntityID_UnmarshalNumber(t *testing.T) {
	var id EntityID
	require.NoError(t, json.Unmarshal([]byte(`10`), &id))
	assert.True(t, id.Valid)
	assert.Equal(t, int64(10), id.Value)
}

func TestEntityID_UnmarshalString(t *testing.T) {
	var id EntityID
	require.NoError(t, json.Unmarshal([]byte(`"TCK-0099"`), &id))
	assert.True(t, id.Valid)
	assert.Equal(t, int64(99), id.Value)
}

func TestEntityID_UnmarshalNull(t *testing.T) {
	var id EntityID
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.False(t, id.Valid)
}

func TestEntityID_UnmarshalGarbageTolerated(t *testing.T) {
	var id EntityID
	require.NoError(t, json.Unmarshal([]byte(`{}`), &id))
	assert.False(t, id.Valid)
}

func TestEntityID_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(NewEntityID(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(data))

	data, err = json.Marshal(EntityID{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus(" PAID ")
	assert.True(t, ok)
	assert.Equal(t, TicketStatusPaid, status)

	_, ok = ParseTicketStatus("shipped")
	assert.False(t, ok)
}

func TestParseRefundStatus(t *testing.T) {
	refund, ok := ParseRefundStatus("In_Process")
	assert.True(t, ok)
	assert.Equal(t, RefundStatusInProcess, refund)

	_, ok = ParseRefundStatus("partial")
	assert.False(t, ok)
}
