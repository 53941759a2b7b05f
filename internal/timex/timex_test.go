package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"1m30s"`, 90 * time.Second, false},
		{"nanoseconds", `1000000000`, time.Second, false},
		{"bad string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 3 * time.Minute})
	require.NoError(t, err)
	assert.JSONEq(t, `"3m0s"`, string(b))
}

func TestClocks(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, at, FixedClock{T: at}.Now())

	calls := 0
	fc := FuncClock(func() time.Time { calls++; return at.Add(time.Duration(calls) * time.Second) })
	assert.Equal(t, at.Add(time.Second), fc.Now())
	assert.Equal(t, at.Add(2*time.Second), fc.Now())

	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(), time.Second)
}

func TestUnix(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, uint64(at.Unix()), Unix(at))
	assert.Equal(t, uint64(0), Unix(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, at.Equal(FromUnix(Unix(at))))
}
