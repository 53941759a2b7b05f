package models

import "time"

// RefreshToken is a server-stored session token bound to a user address
// (base58).
type RefreshToken struct {
	Address string
	Token   string
	Expires time.Time
}
