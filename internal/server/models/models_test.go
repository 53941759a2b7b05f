package models

import (
	"math"
	"testing"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileFields(t *testing.T) {
	f := NewProfileFields("satoshi_nakamoto_the_first", "🐷", "nonbinary", "12345")

	assert.Equal(t, "satoshi_nakamoto", f.UsernameString())
	assert.Equal(t, "🐷", f.EmojiString())
	assert.Equal(t, "nonbinar", f.GenderString())
	assert.Equal(t, "1234", f.PinString())
}

func TestNewProfileFields_PadsShortInput(t *testing.T) {
	f := NewProfileFields("bob", "", "f", "1")

	assert.Equal(t, [UsernameLength]byte{'b', 'o', 'b'}, f.Username)
	assert.Equal(t, [EmojiLength]byte{}, f.Emoji)
	assert.Equal(t, "bob", f.UsernameString())
	assert.Empty(t, f.EmojiString())
}

func TestNewProfileFields_DoesNotSplitRunes(t *testing.T) {
	// "é" is two bytes; 15 ASCII bytes + "é" do not fit into 16.
	f := NewProfileFields("abcdefghijklmnoé", "🐷🐷", "", "")

	assert.Equal(t, "abcdefghijklmno", f.UsernameString())
	assert.Equal(t, byte(0), f.Username[15])
	assert.Equal(t, "🐷", f.EmojiString())
}

func TestValidPotName(t *testing.T) {
	assert.False(t, ValidPotName(""))
	assert.True(t, ValidPotName("a"))
	assert.True(t, ValidPotName("0123456789abcdef0123456789abcdef"))
	assert.False(t, ValidPotName("0123456789abcdef0123456789abcdef!"))
}

func TestCheckedArithmetic(t *testing.T) {
	sum, err := CheckedAdd(math.MaxUint64-10, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = CheckedAdd(math.MaxUint64-10, 20)
	assert.ErrorIs(t, err, common.ErrBalanceOverflow)

	diff, err := CheckedSub(500, 500)
	require.NoError(t, err)
	assert.Zero(t, diff)

	_, err = CheckedSub(1, 2)
	assert.ErrorIs(t, err, common.ErrBalanceUnderflow)
}

func TestSavingsPot_Unlocked(t *testing.T) {
	p := &SavingsPot{UnlockTime: 100}
	assert.False(t, p.Unlocked(99))
	assert.True(t, p.Unlocked(100))
	assert.True(t, p.Unlocked(101))
}

func TestSpace(t *testing.T) {
	assert.Equal(t, 73, ProfileSpace)
	assert.Equal(t, 102, PotSpace)
}
