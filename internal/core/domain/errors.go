package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyContext       = errors.New("empty note context")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrUnparsableResponse = errors.New("unparsable model response")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
