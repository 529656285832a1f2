// Package pipeline provides the staged execution engine: a typed context
// shared by the six stages, the stage contract, the sequential runner, and
// checkpoint snapshots for crash recovery between stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a stage failure. Kinds, not error types, drive retry and
// reporting decisions.
type Kind string

const (
	KindConfig         Kind = "ConfigError"
	KindMissingFile    Kind = "MissingFile"
	KindValidation     Kind = "ValidationError"
	KindQuality        Kind = "QualityWarning"
	KindCategorization Kind = "CategorizationError"
	KindGrading        Kind = "GradingError"
	KindPattern        Kind = "PatternError"
	KindStorage        Kind = "StorageError"
	KindTimeout        Kind = "Timeout"
	KindCancelled      Kind = "Cancelled"

	// KindInternal marks failures no stage classified. Seeing it in a run
	// record means a bug, not an operational condition.
	KindInternal Kind = "InternalError"
)

// Error is a classified pipeline failure. Stages construct it with a kind;
// the runner fills Stage and Elapsed when surfacing it.
type Error struct {
	Kind    Kind
	Stage   string
	Elapsed time.Duration
	Err     error
}

// Errorf builds a classified error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapErr classifies an existing error.
func WrapErr(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s after %s: %v", e.Kind, e.Stage, e.Elapsed.Round(time.Millisecond), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by kind so callers can test errors.Is(err, &Error{Kind: k}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// annotate attaches the stage name and elapsed time to a failure,
// classifying context errors and wrapping anything unclassified.
func annotate(stage string, elapsed time.Duration, err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return &Error{Kind: perr.Kind, Stage: stage, Elapsed: elapsed, Err: perr.Err}
	}
	kind := KindInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCancelled
	}
	return &Error{Kind: kind, Stage: stage, Elapsed: elapsed, Err: err}
}
