package dbx

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// U64 carries a full-range uint64 through NUMERIC(20,0) columns, which
// database/sql cannot do with a plain uint64 above MaxInt64.
type U64 uint64

func (u U64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *U64) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = 0
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("negative value %d for U64", v)
		}
		*u = U64(v)
		return nil
	case []byte:
		return u.parse(string(v))
	case string:
		return u.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into U64", src)
	}
}

func (u *U64) parse(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("scan U64: %w", err)
	}
	*u = U64(n)
	return nil
}
