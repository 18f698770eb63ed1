package bitcoinconsensus

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode is the bitcoinconsensus_error value reported by the engine.
// Values are part of the native ABI.
type ErrorCode int

const (
	ErrOK ErrorCode = iota
	ErrTxIndex
	ErrTxSizeMismatch
	ErrTxDeserialize
	ErrAmountRequired
)

var errorCodeStrings = map[ErrorCode]string{
	ErrOK:             "OK",
	ErrTxIndex:        "TX_INDEX",
	ErrTxSizeMismatch: "TX_SIZE_MISMATCH",
	ErrTxDeserialize:  "TX_DESERIALIZE",
	ErrAmountRequired: "AMOUNT_REQUIRED",
}

var errorCodeDescriptions = map[ErrorCode]string{
	ErrOK:             "script verification failed",
	ErrTxIndex:        "input index out of range",
	ErrTxSizeMismatch: "transaction size does not match buffer length",
	ErrTxDeserialize:  "transaction deserialization failed",
	ErrAmountRequired: "spent amount is required for witness verification",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", int(c))
}

// Error satisfies the error interface so codes can be used as errors.Is targets.
func (c ErrorCode) Error() string {
	if s, ok := errorCodeDescriptions[c]; ok {
		return s
	}
	return c.String()
}

// Error is returned when the engine rejects a spend. Code is copied verbatim
// from the engine; ErrOK means the scripts were evaluated and failed.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("bitcoinconsensus: %s (%s)", e.Code.Error(), e.Code.String())
}

// Is matches an ErrorCode target with the same value.
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// CodeOf extracts the engine error code from err. ok is false if err does not
// carry one.
func CodeOf(err error) (code ErrorCode, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return ErrOK, false
}

// IsScriptFailure reports whether err is a rejection where the transaction
// was well formed but its scripts did not verify.
func IsScriptFailure(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrOK
}
