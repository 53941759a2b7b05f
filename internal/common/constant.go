package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ErrorDomain tags the google.rpc.ErrorInfo details attached to gRPC errors.
const ErrorDomain = "potkeeper"

// AmountDecimals is the number of fractional digits of one display unit.
const AmountDecimals = 9
