package config

import (
	"errors"
	"fmt"
)

// ErrConfig marks configuration problems that must stop the poller before
// any remote call is made.
var ErrConfig = errors.New("invalid configuration")

type ErrMissingSource struct {
	error
}

func NewErrMissingSource(assignment string) *ErrMissingSource {
	return &ErrMissingSource{fmt.Errorf("%w: assignment %s has no source location", ErrConfig, assignment)}
}

func (e *ErrMissingSource) Unwrap() error { return ErrConfig }

type ErrAmbiguousVariable struct {
	error
}

func NewErrAmbiguousVariable(template, reason string) *ErrAmbiguousVariable {
	return &ErrAmbiguousVariable{fmt.Errorf("%w: project template %q %s", ErrConfig, template, reason)}
}

func (e *ErrAmbiguousVariable) Unwrap() error { return ErrConfig }
