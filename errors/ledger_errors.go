package errors

import (
	stderrors "errors"

	"github.com/trueside/fantoken/jsonx"
)

// LedgerErrorCode is the stable numeric code reported for a rejected ledger operation.
// Values are part of the external contract and must never be renumbered.
type LedgerErrorCode uint32

const (
	ErrCodeNotAuthorized       LedgerErrorCode = 100
	ErrCodeInsufficientBalance LedgerErrorCode = 101
	ErrCodeInsufficientStake   LedgerErrorCode = 102
	ErrCodeMaxSupplyReached    LedgerErrorCode = 103
	ErrCodePaused              LedgerErrorCode = 104
	ErrCodeZeroAddress         LedgerErrorCode = 105
)

// Error message constants - user-friendly and concise
const (
	ErrMsgNotAuthorized       = "Caller is not the ledger admin"
	ErrMsgInsufficientBalance = "Not enough balance in your wallet"
	ErrMsgInsufficientStake   = "Not enough staked tokens"
	ErrMsgMaxSupplyReached    = "Mint would exceed the maximum supply"
	ErrMsgPaused              = "Ledger is paused"
	ErrMsgZeroAddress         = "Recipient is the reserved zero address"
)

var (
	ErrNotAuthorized       = NewError(ErrCodeNotAuthorized, ErrMsgNotAuthorized)
	ErrInsufficientBalance = NewError(ErrCodeInsufficientBalance, ErrMsgInsufficientBalance)
	ErrInsufficientStake   = NewError(ErrCodeInsufficientStake, ErrMsgInsufficientStake)
	ErrMaxSupplyReached    = NewError(ErrCodeMaxSupplyReached, ErrMsgMaxSupplyReached)
	ErrPaused              = NewError(ErrCodePaused, ErrMsgPaused)
	ErrZeroAddress         = NewError(ErrCodeZeroAddress, ErrMsgZeroAddress)
)

// LedgerError is the only error the ledger state machine returns.
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	err, _ := jsonx.Marshal(LedgerError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Is matches any LedgerError carrying the same code, so wrapped copies compare equal to the sentinels.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new LedgerError
func NewError(code LedgerErrorCode, message string) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// CodeOf returns the ledger code carried anywhere in err's chain.
func CodeOf(err error) (LedgerErrorCode, bool) {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Code, true
	}
	return 0, false
}

// FromCode returns the sentinel for code, or a LedgerError with a generic message for codes this build does not know.
func FromCode(code LedgerErrorCode) *LedgerError {
	for _, e := range []*LedgerError{ErrNotAuthorized, ErrInsufficientBalance, ErrInsufficientStake, ErrMaxSupplyReached, ErrPaused, ErrZeroAddress} {
		if e.Code == code {
			return e
		}
	}
	return NewError(code, "Ledger rejected the operation")
}
