package dropin

import "fmt"

// Error codes delivered to the caller on a failed settlement. A failed
// external flow reports its own message as both code and message, so the
// set of observable codes is open-ended; these are the ones this package
// produces itself.
const (
	CodeMissingCredential         = "MissingCredential"
	CodeMissingThreeDSecureConfig = "MissingThreeDSecureConfig"
	CodeAddressConstructionFailed = "AddressConstructionFailed"
	CodeThreeDSecureRequestFailed = "ThreeDSecureRequestFailed"
	CodeNoHostSurface             = "NoHostSurface"
	CodeUserCancellation          = "UserCancellation"
	CodeLiabilityNotShiftable     = "ThreeDSecureLiabilityNotShiftable"
	CodeLiabilityNotShifted       = "ThreeDSecureLiabilityNotShifted"
	CodePaymentResolutionFailed   = "PaymentResolutionFailed"
	CodeRequestAlreadyInFlight    = "RequestAlreadyInFlight"
	CodeRequestSuperseded         = "RequestSuperseded"
	CodeAwaitTimeout              = "Timeout"
)

// Error is the typed failure settled to the caller. It is never thrown past
// the correlator boundary; every failure path resolves the pending request
// with one of these.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errf builds a settlement error with a formatted message.
func Errf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrMissingCredential         = &Error{Code: CodeMissingCredential, Message: "a merchant credential must be provided"}
	ErrMissingThreeDSecureConfig = &Error{Code: CodeMissingThreeDSecureConfig, Message: "3D Secure options were not provided"}
	ErrNoHostSurface             = &Error{Code: CodeNoHostSurface, Message: "there is no host surface to launch into"}
	ErrUserCancellation          = &Error{Code: CodeUserCancellation, Message: "the user cancelled"}
	ErrLiabilityNotShiftable     = &Error{Code: CodeLiabilityNotShiftable, Message: "3D Secure liability cannot be shifted"}
	ErrLiabilityNotShifted       = &Error{Code: CodeLiabilityNotShifted, Message: "3D Secure liability was not shifted"}
	ErrPaymentResolutionFailed   = &Error{Code: CodePaymentResolutionFailed, Message: "failed to resolve payment token"}
	ErrRequestAlreadyInFlight    = &Error{Code: CodeRequestAlreadyInFlight, Message: "another payment request is already in flight"}
	ErrRequestSuperseded         = &Error{Code: CodeRequestSuperseded, Message: "a newer payment request displaced this one"}
)
