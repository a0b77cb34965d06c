package ledger

import (
	"testing"

	"maitred/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecordOpenTable(t *testing.T) {
	rec := models.NewOpenTable(2, 2, 11)
	assert.Equal(t, "N/A,2,2,N/A,No,11,No,N/A,0", EncodeRecord(rec))
}

func TestEncodeRecordBookedSpecial(t *testing.T) {
	rec := models.NewOpenTable(8, 8, 19)
	rec.Book("eve", 6)
	rec.CardNumber = "0000000012345678"
	rec.Surcharge = 100
	assert.Equal(t, "eve,8,8,6,Yes,19,Yes,0000000012345678,100", EncodeRecord(rec))
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord("steve,3,2,2,No,12,Yes,N/A,0")
	require.NoError(t, err)
	assert.Equal(t, "steve", rec.Owner)
	assert.Equal(t, 3, rec.TableNumber)
	assert.Equal(t, 2, rec.Capacity)
	assert.Equal(t, 2, rec.PartySize)
	assert.False(t, rec.Special)
	assert.Equal(t, 12, rec.TimeSlot)
	assert.True(t, rec.Booked)
	assert.Equal(t, "N/A", rec.CardNumber)
	assert.Equal(t, 0, rec.Surcharge)
}

func TestDecodeRecordSentinelPartySize(t *testing.T) {
	rec, err := DecodeRecord("N/A,8,8,N/A,Yes,21,No,N/A,0")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.PartySize)
	assert.True(t, rec.Special)
	assert.False(t, rec.Booked)
}

func TestDecodeRecordWrongFieldCount(t *testing.T) {
	_, err := DecodeRecord("N/A,1,2,N/A,No,11,No,N/A")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDecodeRecordNonNumericField(t *testing.T) {
	for _, line := range []string{
		"N/A,one,2,N/A,No,11,No,N/A,0",
		"N/A,1,two,N/A,No,11,No,N/A,0",
		"N/A,1,2,three,No,11,No,N/A,0",
		"N/A,1,2,N/A,No,noon,No,N/A,0",
		"N/A,1,2,N/A,No,11,No,N/A,free",
	} {
		_, err := DecodeRecord(line)
		assert.ErrorIs(t, err, ErrMalformedRecord, "line %q", line)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	rec := models.NewOpenTable(5, 4, 17)
	rec.Book("alice", 3)

	decoded, err := DecodeRecord(EncodeRecord(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}
