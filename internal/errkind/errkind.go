// Package errkind classifies failures of the publish and verify pipeline.
package errkind

import (
	"errors"
	"fmt"
)

// Kind names a class of failure.
type Kind string

const (
	// NotFound marks a declared or referenced path that does not exist,
	// a skill directory without its marker file, or an empty declaration.
	NotFound Kind = "not_found"
	// Syntax marks configuration text that cannot be parsed.
	Syntax Kind = "syntax"
	// Shape marks configuration that parses but lacks required structure.
	Shape Kind = "shape"
	// Integrity marks digest drift or a missing/orphaned published entry.
	Integrity Kind = "integrity"
	// IO marks a filesystem operation failure.
	IO Kind = "io"
)

// Error is a classified error. Subject names the skill, path or key the
// failure is about.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Subject, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with a formatted message.
func New(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. It returns nil when err is nil.
func Wrap(kind Kind, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or the empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
