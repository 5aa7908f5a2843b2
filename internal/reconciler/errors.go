package reconciler

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord reports staged input that cannot be reconciled. It is
	// always detected before the store is touched.
	ErrMalformedRecord = errors.New("malformed staged record")
	// ErrVerification matches every *VerificationError.
	ErrVerification = errors.New("verification failed")
)

// VerificationError reports a store state that differs from the expected one.
type VerificationError struct {
	Stage  State
	Detail string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Stage, ErrVerification, e.Detail)
}

func (e *VerificationError) Is(target error) bool {
	return target == ErrVerification
}

func verificationf(stage State, format string, args ...any) error {
	return &VerificationError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
