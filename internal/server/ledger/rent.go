package ledger

import (
	"math/bits"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

// accountOverhead is charged on top of the record's own space.
const accountOverhead = 128

// DefaultRentPerByte is two years of storage at 3480 units per byte-year.
const DefaultRentPerByte = 6960

// RentSchedule prices the storage deposit of a record.
type RentSchedule struct {
	PerByte uint64
	Base    uint64
}

// Minimum returns Base + (128+space)*PerByte.
func (s RentSchedule) Minimum(space uint64) (uint64, error) {
	size, carry := bits.Add64(space, accountOverhead, 0)
	if carry != 0 {
		return 0, common.ErrBalanceOverflow
	}
	hi, lo := bits.Mul64(size, s.PerByte)
	if hi != 0 {
		return 0, common.ErrBalanceOverflow
	}
	return models.CheckedAdd(lo, s.Base)
}
