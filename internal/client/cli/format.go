package cli

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a whole-unit amount such as "1.5" to base units.
// Zero, negative, over-precise and out-of-range values are rejected.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be positive", common.ErrInvalidAmount)
	}

	base := d.Shift(common.AmountDecimals)
	if !base.IsInteger() {
		return 0, fmt.Errorf("%w: at most %d decimals", common.ErrInvalidAmount, common.AmountDecimals)
	}
	bi := base.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: too large", common.ErrInvalidAmount)
	}
	return bi.Uint64(), nil
}

// FormatAmount renders base units as whole units without trailing zeros.
func FormatAmount(v uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -common.AmountDecimals).String()
}

// ParseUnlock accepts an RFC 3339 timestamp, a date (2006-01-02, midnight
// UTC) or an offset from now such as "90d" or "36h".
func ParseUnlock(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 0 {
			return now.Add(time.Duration(n) * 24 * time.Hour), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(d), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidUnlockTime, s)
}

func formatTime(unix uint64) string {
	return time.Unix(int64(unix), 0).UTC().Format(time.RFC3339)
}
