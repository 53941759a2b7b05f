package models

import (
	"math/bits"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

// MaxPotNameLength is the longest pot name in bytes.
const MaxPotNameLength = 32

// SavingsPot is a named, time-locked value-holding record. Its address is
// derived from (authority, name) and Bump re-derives it.
type SavingsPot struct {
	Address    cryptox.Address
	Authority  cryptox.Address
	Name       string
	UnlockTime uint64
	Balance    uint64
	CreatedAt  uint64
	Bump       uint8
	Deposit    uint64
}

// Seeds returns the derivation seeds of the pot.
func (p *SavingsPot) Seeds() [][]byte {
	return cryptox.PotSeeds(p.Authority, p.Name)
}

// Unlocked reports whether withdrawals are allowed at now.
func (p *SavingsPot) Unlocked(now uint64) bool {
	return now >= p.UnlockTime
}

// ValidPotName checks the 1..32 byte bound.
func ValidPotName(name string) bool {
	return len(name) >= 1 && len(name) <= MaxPotNameLength
}

// CheckedAdd returns a+b or ErrBalanceOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, common.ErrBalanceOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrBalanceUnderflow.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, common.ErrBalanceUnderflow
	}
	return diff, nil
}
