package naming

import (
	"errors"
	"fmt"

	"xdao.co/nametree/record"
	"xdao.co/nametree/resolver"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/table"
)

type ErrorCode string

const (
	ErrInvalidName    ErrorCode = "INVALID_NAME"
	ErrIntegrity      ErrorCode = "INTEGRITY"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrInvalidLocator ErrorCode = "INVALID_LOCATOR"
	ErrMissingCAS     ErrorCode = "MISSING_CAS"
	ErrInternal       ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// mapErr translates internal faults to coded errors. Already-coded errors
// pass through unchanged.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}
	var rerr *record.Error
	if errors.As(err, &rerr) {
		switch rerr.Kind {
		case record.KindValidation:
			return NewError(ErrInvalidName, rerr.Error())
		case record.KindIntegrity:
			return NewError(ErrIntegrity, rerr.Error())
		default:
			return NewError(ErrInternal, rerr.Error())
		}
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewError(ErrNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidCID), errors.Is(err, storage.ErrCIDMismatch):
		return NewError(ErrInvalidLocator, err.Error())
	case errors.Is(err, table.ErrOpaqueLocator):
		return NewError(ErrInvalidLocator, err.Error())
	case errors.Is(err, resolver.ErrDepthExceeded):
		return NewError(ErrInternal, err.Error())
	default:
		return NewError(ErrInternal, err.Error())
	}
}
