package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateName = errors.New("duplicate batch name")
	ErrDateConflict  = errors.New("date range conflict")
	ErrBusinessRule  = errors.New("business rule violation")
	ErrForeignKey    = errors.New("foreign key violation")
)

// ErrorCode is the stable code surfaced to callers.
type ErrorCode string

const (
	CodeDuplicateName ErrorCode = "DUPLICATE_NAME"
	CodeForeignKey    ErrorCode = "FOREIGN_KEY_VIOLATION"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeBusinessRule  ErrorCode = "BUSINESS_RULE_VIOLATION"
	CodeDateConflict  ErrorCode = "DATE_CONFLICT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeGeneric       ErrorCode = "GENERIC_ERROR"
)

func (c ErrorCode) String() string { return string(c) }

func (c ErrorCode) sentinel() error {
	switch c {
	case CodeDuplicateName:
		return ErrDuplicateName
	case CodeForeignKey:
		return ErrForeignKey
	case CodeValidation:
		return ErrValidation
	case CodeBusinessRule:
		return ErrBusinessRule
	case CodeDateConflict:
		return ErrDateConflict
	case CodeNotFound:
		return ErrNotFound
	}
	return nil
}

// CodeOf maps an error to its stable code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Problems) > 0 {
		return verr.Problems[0].Code
	}

	switch {
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrDateConflict):
		return CodeDateConflict
	case errors.Is(err, ErrBusinessRule):
		return CodeBusinessRule
	case errors.Is(err, ErrForeignKey):
		return CodeForeignKey
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	}
	return CodeGeneric
}

// Problem is one failed rule in a validation report.
type Problem struct {
	Code      ErrorCode
	Field     string
	Message   string
	Conflicts []BatchRef
}

// ValidationError aggregates every failed rule of one validation pass.
// Its code is the code of the first problem.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Add(code ErrorCode, field string, message string, conflicts ...BatchRef) {
	e.Problems = append(e.Problems, Problem{
		Code:      code,
		Field:     field,
		Message:   message,
		Conflicts: conflicts,
	})
}

func (e *ValidationError) HasProblems() bool {
	return e != nil && len(e.Problems) > 0
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		messages = append(messages, p.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Unwrap exposes the sentinel of every problem, so errors.Is matches any of them.
func (e *ValidationError) Unwrap() []error {
	if e == nil {
		return nil
	}
	seen := make(map[ErrorCode]bool, len(e.Problems))
	errs := make([]error, 0, len(e.Problems))
	for _, p := range e.Problems {
		if seen[p.Code] {
			continue
		}
		seen[p.Code] = true
		if s := p.Code.sentinel(); s != nil {
			errs = append(errs, s)
		}
	}
	return errs
}

// ConflictError is a business-rule or store-constraint failure naming the batches it collided with.
type ConflictError struct {
	Kind      error
	Message   string
	Conflicts []BatchRef
}

func NewActiveConflict(conflicts []BatchRef) *ConflictError {
	msg := "another batch is currently active"
	if len(conflicts) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, joinRefs(conflicts))
	}
	return &ConflictError{Kind: ErrBusinessRule, Message: msg, Conflicts: conflicts}
}

func NewCategoryConflict(category Category, conflicts []BatchRef) *ConflictError {
	msg := fmt.Sprintf("another %s batch is currently active", category)
	if len(conflicts) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, joinRefs(conflicts))
	}
	return &ConflictError{Kind: ErrBusinessRule, Message: msg, Conflicts: conflicts}
}

func NewDateConflict(conflicts []BatchRef) *ConflictError {
	msg := "date range conflicts with an existing batch"
	if len(conflicts) > 0 {
		msg = fmt.Sprintf("date range conflicts with %s", joinRefs(conflicts))
	}
	return &ConflictError{Kind: ErrDateConflict, Message: msg, Conflicts: conflicts}
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// ConflictsOf returns the batches named by err, if any.
func ConflictsOf(err error) []BatchRef {
	var cerr *ConflictError
	if errors.As(err, &cerr) {
		return cerr.Conflicts
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		var refs []BatchRef
		for _, p := range verr.Problems {
			refs = append(refs, p.Conflicts...)
		}
		return refs
	}
	return nil
}
