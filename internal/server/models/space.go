// Package models holds the server-side records of PotKeeper: profiles, pots,
// ledger journal entries and refresh tokens.
package models

// Record sizes in bytes, used to price the storage deposit. Each starts
// with an 8-byte discriminator.
const (
	// discriminator + authority + username + emoji + gender + pin
	ProfileSpace = 8 + 33 + UsernameLength + EmojiLength + GenderLength + PinLength

	// discriminator + authority + name (length prefix + bytes) + unlock_time
	// + balance + created_at + bump
	PotSpace = 8 + 33 + (4 + MaxPotNameLength) + 8 + 8 + 8 + 1
)
