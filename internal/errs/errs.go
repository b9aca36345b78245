package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Code uint16

const (
	CodeUnknown Code = iota
	CodeArgumentOutOfRange
	CodeAlreadySet
	CodeAlreadyBuilt
	CodeInvalidConfiguration
	CodeTransformerResolution
	CodeUnsatisfiedDependency
	CodeAmbiguousDependency
	CodeInvalidArguments
	CodeServiceNotFound
	CodeDuplicateService
	CodeProviderFailed
	CodeScopeNotFound
	CodeInternal
)

var codeNames = map[Code]string{
	CodeUnknown:               "UNKNOWN",
	CodeArgumentOutOfRange:    "ARGUMENT_OUT_OF_RANGE",
	CodeAlreadySet:            "ALREADY_SET",
	CodeAlreadyBuilt:          "ALREADY_BUILT",
	CodeInvalidConfiguration:  "INVALID_CONFIGURATION",
	CodeTransformerResolution: "TRANSFORMER_RESOLUTION",
	CodeUnsatisfiedDependency: "UNSATISFIED_DEPENDENCY",
	CodeAmbiguousDependency:   "AMBIGUOUS_DEPENDENCY",
	CodeInvalidArguments:      "INVALID_ARGUMENTS",
	CodeServiceNotFound:       "SERVICE_NOT_FOUND",
	CodeDuplicateService:      "DUPLICATE_SERVICE",
	CodeProviderFailed:        "PROVIDER_FAILED",
	CodeScopeNotFound:         "SCOPE_NOT_FOUND",
	CodeInternal:              "INTERNAL",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Configuration reports whether the code belongs to builder misuse.
func (c Code) Configuration() bool {
	switch c {
	case CodeArgumentOutOfRange, CodeAlreadySet, CodeAlreadyBuilt, CodeInvalidConfiguration:
		return true
	default:
		return false
	}
}

type Error struct {
	Code       Code
	Message    string
	Service    string
	Cause      error
	Candidates []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	for _, c := range e.Candidates {
		b.WriteString("\n\t- ")
		b.WriteString(c)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithCandidates(candidates []string) *Error {
	e.Candidates = candidates
	return e
}

func New(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

func Internal(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// HasCode reports whether err, or any error it wraps, is an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
