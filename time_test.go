package accounts_test

import (
	"testing"
	"time"

	accounts "github.com/parkhouse-labs/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	t.Run("recent time is within a 24h window", func(t *testing.T) {
		ok, err := accounts.IsWithinThresholdPeriod(time.Now().Add(-time.Hour), "24h")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("old time falls outside a 24h window", func(t *testing.T) {
		ok, err := accounts.IsWithinThresholdPeriod(time.Now().Add(-25*time.Hour), "24h")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := accounts.IsWithinThresholdPeriod(time.Now(), "one-day")
		assert.Error(t, err)
	})
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	ok, err := accounts.IsOutsideThresholdPeriod(time.Now().Add(-25*time.Hour), "24h")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = accounts.IsOutsideThresholdPeriod(time.Now(), "24h")
	require.NoError(t, err)
	assert.False(t, ok)
}
