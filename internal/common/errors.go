// Package common defines shared constants and sentinel errors used across
// client and server layers of PotKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound           = errors.New("not found")
	ErrAccountAlreadyExists = errors.New("account already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidPotName          = errors.New("invalid pot name")
	ErrInvalidUnlockTime       = errors.New("invalid unlock time")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidWithdrawalAmount = errors.New("invalid withdrawal amount")
	ErrInvalidAddress          = errors.New("invalid address")

	// Temporal errors.
	ErrPotLocked = errors.New("pot is still locked")

	// Arithmetic errors.
	ErrBalanceOverflow  = errors.New("balance overflow")
	ErrBalanceUnderflow = errors.New("balance underflow")

	// Ledger errors.
	ErrTransferFailed      = errors.New("transfer failed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrDerivationExhausted = errors.New("no valid bump for seeds")

	// Request signing errors.
	ErrSignatureExpired = errors.New("signature expired")
	ErrReplayedRequest  = errors.New("request already processed")

	// Faucet errors.
	ErrFaucetDisabled = errors.New("faucet disabled")
	ErrRateLimited    = errors.New("rate limited")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
