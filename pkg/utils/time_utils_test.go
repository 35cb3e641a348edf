package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormatClock(t *testing.T) {
	m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, m)
	assert.Equal(t, "08:30", FormatClock(m))
	assert.Equal(t, "21:05", FormatClock(21*60+5))

	for _, bad := range []string{"", "8", "25:00", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestTripDayAndElapsedDays(t *testing.T) {
	// 23:30 UTC is already the next morning in Vietnam.
	start := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-02", FormatDate(TripDay(start, 0)))
	assert.Equal(t, "2025-03-04", FormatDate(TripDay(start, 2)))
	assert.Equal(t, "", FormatDate(TripDay(time.Time{}, 1)))

	assert.Equal(t, 1, ElapsedDays(start, start.Add(time.Hour)))
	assert.Equal(t, 3, ElapsedDays(start, start.Add(48*time.Hour)))
	assert.Equal(t, 1, ElapsedDays(start, start.Add(-time.Hour)))
	assert.Equal(t, 1, ElapsedDays(time.Time{}, start))
}

func TestCreateAndValidateToken(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := CreateToken(secret, "u1", "system", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "system", claims.Role)

	_, err = ValidateToken([]byte("other"), tok)
	assert.Error(t, err)
}
