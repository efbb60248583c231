package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 8, 20, 14, 30, 0, 0, time.UTC)

func TestResolve_ExplicitRange(t *testing.T) {
	dr, err := Resolve("month", "2025-01-01", "2025-03-31", testNow)
	require.NoError(t, err)
	assert.False(t, dr.All)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), dr.From)
	// inclusive upper bound
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), dr.To)
}

func TestResolve_MalformedExplicitDatesRejected(t *testing.T) {
	_, err := Resolve("", "2025-13-45", "2025-03-31", testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Resolve("", "2025-01-01", "", testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Resolve("", "2025-03-31", "2025-01-01", testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolve_CalendarTokens(t *testing.T) {
	dr, err := Resolve("month", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), dr.From)

	dr, err = Resolve("quarter", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), dr.From)

	dr, err = Resolve("year", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), dr.From)
}

func TestResolve_RollingTokens(t *testing.T) {
	dr, err := Resolve("week", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), dr.From)

	dr, err = Resolve("30days", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), dr.From)

	dr, err = Resolve("6months", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), dr.From)
}

func TestResolve_UnknownTokenUnrestricted(t *testing.T) {
	for _, token := range []string{"all", "", "whatever"} {
		dr, err := Resolve(token, "", "", testNow)
		require.NoError(t, err)
		assert.True(t, dr.All, "token %q", token)
	}
}
