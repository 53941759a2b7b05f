package models

import (
	"bytes"
	"unicode/utf8"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

// Fixed display-field widths of a profile record.
const (
	UsernameLength = 16
	EmojiLength    = 4
	GenderLength   = 8
	PinLength      = 4
)

// ProfileFields are the display fields of a profile, stored as
// zero-padded fixed buffers.
type ProfileFields struct {
	Username [UsernameLength]byte
	Emoji    [EmojiLength]byte
	Gender   [GenderLength]byte
	Pin      [PinLength]byte
}

// NewProfileFields truncates and zero-pads the inputs into their buffers.
func NewProfileFields(username, emoji, gender, pin string) ProfileFields {
	var f ProfileFields
	fill(f.Username[:], username)
	fill(f.Emoji[:], emoji)
	fill(f.Gender[:], gender)
	fill(f.Pin[:], pin)
	return f
}

func (f ProfileFields) UsernameString() string { return trimPadding(f.Username[:]) }
func (f ProfileFields) EmojiString() string    { return trimPadding(f.Emoji[:]) }
func (f ProfileFields) GenderString() string   { return trimPadding(f.Gender[:]) }
func (f ProfileFields) PinString() string      { return trimPadding(f.Pin[:]) }

// fill copies s into dst, cutting at the last whole UTF-8 sequence that fits.
func fill(dst []byte, s string) {
	n := len(s)
	if n > len(dst) {
		n = len(dst)
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
	}
	copy(dst, s[:n])
	clear(dst[n:])
}

func trimPadding(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// UserProfile is the per-owner profile record. Authority never changes after
// creation and the record is never deleted.
type UserProfile struct {
	Address   cryptox.Address
	Authority cryptox.Address
	ProfileFields
	Bump      uint8
	Deposit   uint64
	CreatedAt uint64
	UpdatedAt uint64
}
