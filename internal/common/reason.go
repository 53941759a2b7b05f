package common

import "errors"

// reasons maps every sentinel to the stable string sent over the wire and
// used as a metric label. Order matters: the first match wins.
var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidPotName, "INVALID_POT_NAME"},
	{ErrInvalidUnlockTime, "INVALID_UNLOCK_TIME"},
	{ErrInvalidWithdrawalAmount, "INVALID_WITHDRAWAL_AMOUNT"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrInvalidAddress, "INVALID_ADDRESS"},
	{ErrPotLocked, "POT_LOCKED"},
	{ErrBalanceOverflow, "BALANCE_OVERFLOW"},
	{ErrBalanceUnderflow, "BALANCE_UNDERFLOW"},
	{ErrAccountAlreadyExists, "ACCOUNT_ALREADY_EXISTS"},
	{ErrorNotFound, "NOT_FOUND"},
	{ErrSignatureExpired, "SIGNATURE_EXPIRED"},
	{ErrReplayedRequest, "REPLAYED_REQUEST"},
	{ErrRefreshTokenExpired, "REFRESH_TOKEN_EXPIRED"},
	{ErrTokenExpired, "TOKEN_EXPIRED"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{ErrorUnauthorized, "UNAUTHORIZED"},
	{ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{ErrTransferFailed, "TRANSFER_FAILED"},
	{ErrDerivationExhausted, "DERIVATION_EXHAUSTED"},
	{ErrFaucetDisabled, "FAUCET_DISABLED"},
	{ErrRateLimited, "RATE_LIMITED"},
	{ErrorInternal, "INTERNAL"},
}

// Reason returns the stable reason code for err, or "INTERNAL" when err does
// not wrap any known sentinel. A nil error yields "OK".
//
// ErrInsufficientFunds is checked before ErrTransferFailed since the ledger
// wraps both.
func Reason(err error) string {
	if err == nil {
		return "OK"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "INTERNAL"
}

// FromReason is the inverse of Reason. Unknown codes map to ErrorInternal.
func FromReason(reason string) error {
	for _, r := range reasons {
		if r.reason == reason {
			return r.err
		}
	}
	return ErrorInternal
}
