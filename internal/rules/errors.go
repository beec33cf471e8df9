package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("rule syntax error")

	// ErrUnsupportedOperator is returned when evaluation reaches a clause
	// whose operator parses but has no evaluator yet (currently "in").
	ErrUnsupportedOperator = errors.New("operator not yet supported")
)

// SyntaxError describes malformed rule text.
type SyntaxError struct {
	Clause int    // 1-based clause index, 0 when the rule as a whole is bad
	Text   string // offending clause text
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Clause == 0 {
		return fmt.Sprintf("rule syntax error: %s", e.Reason)
	}
	return fmt.Sprintf("rule syntax error in clause %d %q: %s", e.Clause, e.Text, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
