package cli

import (
	"math"
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 1_000_000_000, false},
		{"1.5", 1_500_000_000, false},
		{"0.000000001", 1, false},
		{" 2.25 ", 2_250_000_000, false},
		{"18.446744073709551615", math.MaxUint64, false},
		{"18.446744073709551616", 0, true},
		{"0.0000000001", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "0.000000001", FormatAmount(1))
	assert.Equal(t, "1.5", FormatAmount(1_500_000_000))
	assert.Equal(t, "18.446744073709551615", FormatAmount(math.MaxUint64))
}

func TestParseUnlock(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	got, err := ParseUnlock("2026-07-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseUnlock("2026-07-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseUnlock("30d", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), got)

	got, err = ParseUnlock("36h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(36*time.Hour), got)

	for _, bad := range []string{"", "tomorrow", "-5d", "-1h", "xd"} {
		_, err := ParseUnlock(bad, now)
		assert.ErrorIs(t, err, common.ErrInvalidUnlockTime, bad)
	}
}
