package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguous is returned in strict mode when a short identifier has
	// several distinct qualified declarations.
	ErrAmbiguous = errors.New("ambiguous declarations")
	// ErrUnstable is returned in strict mode when a resolved identifier would
	// itself be rewritten by a second run.
	ErrUnstable = errors.New("resolution is not idempotent")
	// ErrAlreadyRun is returned by a second Run on the same Resolver.
	ErrAlreadyRun = errors.New("resolver already run")
	// ErrFrozen is returned when writing to a table after phase 1.
	ErrFrozen = errors.New("resolution table is frozen")
)

// Phase names the pass a document failed in.
type Phase string

const (
	PhaseBuild   Phase = "build"
	PhaseRewrite Phase = "rewrite"
)

// DocumentError is a failure confined to one document.
type DocumentError struct {
	Path  string
	Phase Phase
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
