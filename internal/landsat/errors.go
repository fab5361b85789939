package landsat

import (
	"errors"
	"fmt"
)

var (
	ErrParse            = errors.New("malformed metadata")
	ErrMissingParameter = errors.New("missing metadata parameter")
)

// ParseError reports a metadata line without a KEY = VALUE delimiter, or a value
// that cannot be read as the requested type.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d: %q", e.Line, e.Text)
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else {
		msg += ": missing '=' delimiter"
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingParameterError is returned when a metadata table lacks a key the
// requested band needs.
type MissingParameterError struct {
	Key  string
	Band int
}

func (e *MissingParameterError) Error() string {
	if e.Band == 0 {
		return fmt.Sprintf("metadata has no %s", e.Key)
	}
	return fmt.Sprintf("metadata has no %s for band %d", e.Key, e.Band)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}
