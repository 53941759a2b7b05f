package api

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeByErr = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidPotName, codes.InvalidArgument},
	{common.ErrInvalidUnlockTime, codes.InvalidArgument},
	{common.ErrInvalidWithdrawalAmount, codes.InvalidArgument},
	{common.ErrInvalidAmount, codes.InvalidArgument},
	{common.ErrInvalidAddress, codes.InvalidArgument},
	{common.ErrPotLocked, codes.FailedPrecondition},
	{common.ErrBalanceOverflow, codes.FailedPrecondition},
	{common.ErrBalanceUnderflow, codes.FailedPrecondition},
	{common.ErrInsufficientFunds, codes.FailedPrecondition},
	{common.ErrTransferFailed, codes.FailedPrecondition},
	{common.ErrFaucetDisabled, codes.FailedPrecondition},
	{common.ErrAccountAlreadyExists, codes.AlreadyExists},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrSignatureExpired, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.PermissionDenied},
	{common.ErrReplayedRequest, codes.Aborted},
	{common.ErrRateLimited, codes.ResourceExhausted},
}

// Code returns the gRPC code for a domain error.
func Code(err error) codes.Code {
	for _, c := range codeByErr {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

// ToStatus converts err into a gRPC status error carrying an ErrorInfo with
// the stable reason. Internal errors are not described to the caller.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := Code(err)
	msg := err.Error()
	if code == codes.Internal {
		msg = common.ErrorInternal.Error()
	}
	st := status.New(code, msg)
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: common.Reason(err),
		Domain: common.ErrorDomain,
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// RemoteError is a server error received by a client. It unwraps to the
// sentinel named by the reason so errors.Is works across the wire.
type RemoteError struct {
	Code    codes.Code
	Reason  string
	Message string
	err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.err }

// FromStatus maps a gRPC error back to a domain error. Errors without
// PotKeeper details are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st == nil {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != common.ErrorDomain {
			continue
		}
		return &RemoteError{
			Code:    st.Code(),
			Reason:  info.GetReason(),
			Message: st.Message(),
			err:     common.FromReason(info.GetReason()),
		}
	}
	return err
}
