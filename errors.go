package needle

import (
	"errors"

	"github.com/danpasecinic/needle-invoke/internal/errs"
)

type (
	Error     = errs.Error
	ErrorCode = errs.Code
)

const (
	ErrCodeUnknown               = errs.CodeUnknown
	ErrCodeArgumentOutOfRange    = errs.CodeArgumentOutOfRange
	ErrCodeAlreadySet            = errs.CodeAlreadySet
	ErrCodeAlreadyBuilt          = errs.CodeAlreadyBuilt
	ErrCodeInvalidConfiguration  = errs.CodeInvalidConfiguration
	ErrCodeTransformerResolution = errs.CodeTransformerResolution
	ErrCodeUnsatisfiedDependency = errs.CodeUnsatisfiedDependency
	ErrCodeAmbiguousDependency   = errs.CodeAmbiguousDependency
	ErrCodeInvalidArguments      = errs.CodeInvalidArguments
	ErrCodeServiceNotFound       = errs.CodeServiceNotFound
	ErrCodeDuplicateService      = errs.CodeDuplicateService
	ErrCodeProviderFailed        = errs.CodeProviderFailed
	ErrCodeScopeNotFound         = errs.CodeScopeNotFound
	ErrCodeInternal              = errs.CodeInternal
)

// IsConfigurationError reports whether err was raised while configuring an
// invoker builder.
func IsConfigurationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code.Configuration()
}

func IsResolutionError(err error) bool {
	return errs.HasCode(err, errs.CodeTransformerResolution)
}

func IsUnsatisfied(err error) bool {
	return errs.HasCode(err, errs.CodeUnsatisfiedDependency)
}

func IsAmbiguous(err error) bool {
	return errs.HasCode(err, errs.CodeAmbiguousDependency)
}

func IsInvalidArguments(err error) bool {
	return errs.HasCode(err, errs.CodeInvalidArguments)
}

func IsNotFound(err error) bool {
	return errs.HasCode(err, errs.CodeServiceNotFound)
}

// ErrorCodeOf returns the code carried by err, or ErrCodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}
