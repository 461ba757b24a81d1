package rules

import (
	"errors"
	"fmt"
)

type LoadErrorKind int8

const (
	SourceUnreadable LoadErrorKind = iota
	MalformedStructure
)

var (
	ErrSourceUnreadable   = errors.New("rule source unreadable")
	ErrMalformedStructure = errors.New("malformed rule table")
)

func (k LoadErrorKind) sentinel() error {
	if k == SourceUnreadable {
		return ErrSourceUnreadable
	}
	return ErrMalformedStructure
}

// LoadError fails a whole table load. Defects of single rule records never
// produce it, see SkippedRecord.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind.sentinel(), e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func unreadable(source string, err error) *LoadError {
	return &LoadError{Kind: SourceUnreadable, Source: source, Err: err}
}

func malformed(source string, err error) *LoadError {
	return &LoadError{Kind: MalformedStructure, Source: source, Err: err}
}
