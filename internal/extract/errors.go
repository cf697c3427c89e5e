package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalancedNamespace indicates a closing brace with no open namespace
	// or pending nested brace to absorb it.
	ErrUnbalancedNamespace = errors.New("unbalanced namespace nesting")
)

// ParseError reports a malformed file. Line is the 1-based index of the
// offending logical (comment stripped) line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: logical line %d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
