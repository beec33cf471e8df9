// Package rules implements the window filter language:
//
//	$.<attribute> <op> <expression> [and $.<attribute> <op> <expression>]*
//
// Clauses are conjoined and evaluated left to right, stopping at the first
// clause that fails. Supported attributes are title (text) and visible
// (bool). Operators are match (prefix-anchored regexp in {...}), == (value
// equality), is (true/false/none/null identity) and in (reserved).
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mj1618/winwatch/internal/model"
)

// Operator is a clause operator token.
type Operator string

const (
	OpMatch  Operator = "match"
	OpEquals Operator = "=="
	OpIs     Operator = "is"
	OpIn     Operator = "in"
)

const (
	sigil     = "$."
	delimiter = " and "
)

// DefaultRuleText selects visible windows whose title contains at least one
// CJK Unified Ideographs character.
const DefaultRuleText = `$.title match {.*[\x{4E00}-\x{9FFF}]} and $.visible is true`

// Clause is one parsed `$.attr op expr` predicate.
type Clause struct {
	Attr string
	Op   Operator
	Expr string

	literal Value
	re      *regexp.Regexp
}

func (c Clause) String() string {
	return fmt.Sprintf("%s%s %s %s", sigil, c.Attr, c.Op, c.Expr)
}

// Rule is a compiled conjunction of clauses. It is immutable and safe for
// concurrent use.
type Rule struct {
	text    string
	clauses []Clause
}

// Parse compiles rule text into a Rule. It fails with a *SyntaxError.
func Parse(text string) (*Rule, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &SyntaxError{Reason: "empty rule"}
	}
	parts := strings.Split(text, delimiter)
	r := &Rule{text: text, clauses: make([]Clause, 0, len(parts))}
	for i, part := range parts {
		c, err := parseClause(part)
		if err != nil {
			return nil, &SyntaxError{Clause: i + 1, Text: part, Reason: err.Error()}
		}
		r.clauses = append(r.clauses, c)
	}
	return r, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *Rule {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultRule *Rule
)

// Default returns the compiled DefaultRuleText.
func Default() *Rule {
	defaultOnce.Do(func() {
		defaultRule = MustParse(DefaultRuleText)
	})
	return defaultRule
}

func parseClause(s string) (Clause, error) {
	if !strings.HasPrefix(s, sigil) {
		return Clause{}, fmt.Errorf("missing %q prefix", sigil)
	}
	fields := strings.SplitN(s[len(sigil):], " ", 3)
	if len(fields) < 3 || fields[0] == "" || fields[2] == "" {
		return Clause{}, fmt.Errorf("expected %s<attribute> <op> <expression>", sigil)
	}
	c := Clause{Attr: fields[0], Op: Operator(fields[1]), Expr: fields[2]}

	attr, ok := attributes[c.Attr]
	if !ok {
		return Clause{}, fmt.Errorf("unknown attribute %q (want one of %s)", c.Attr, strings.Join(Attributes(), ", "))
	}

	switch c.Op {
	case OpMatch:
		if attr.kind != KindText {
			return Clause{}, fmt.Errorf("match needs a text attribute, %s is %s", c.Attr, attr.kind)
		}
		if len(c.Expr) < 2 || c.Expr[0] != '{' || c.Expr[len(c.Expr)-1] != '}' {
			return Clause{}, fmt.Errorf("match expression must be wrapped in {}")
		}
		re, err := compilePrefix(c.Expr[1 : len(c.Expr)-1])
		if err != nil {
			return Clause{}, fmt.Errorf("bad pattern: %w", err)
		}
		c.re = re
	case OpEquals:
		c.literal = equalsLiteral(c.Expr)
	case OpIs:
		lit, ok := identityLiteral(c.Expr)
		if !ok {
			return Clause{}, fmt.Errorf("is expects true, false, none or null, got %q", c.Expr)
		}
		c.literal = lit
	case OpIn:
		// Accepted so rules stay forward compatible; evaluation reports
		// ErrUnsupportedOperator.
	default:
		return Clause{}, fmt.Errorf("unknown operator %q (want match, ==, is or in)", c.Op)
	}
	return c, nil
}

// pythonEscape matches \uXXXX escapes, which RE2 spells \x{XXXX}.
var pythonEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// compilePrefix compiles a pattern that must match at the start of the
// input but not necessarily consume all of it.
func compilePrefix(pattern string) (*regexp.Regexp, error) {
	pattern = pythonEscape.ReplaceAllString(pattern, `\x{$1}`)
	return regexp.Compile(`^(?:` + pattern + `)`)
}

func equalsLiteral(expr string) Value {
	switch {
	case strings.EqualFold(expr, "true"):
		return Bool(true)
	case strings.EqualFold(expr, "false"):
		return Bool(false)
	}
	if n := len(expr); n >= 2 && (expr[0] == '"' || expr[0] == '\'') && expr[n-1] == expr[0] {
		return Text(expr[1 : n-1])
	}
	return Text(expr)
}

func identityLiteral(expr string) (Value, bool) {
	switch strings.ToLower(expr) {
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	case "none", "null":
		return Null, true
	}
	return Value{}, false
}

func (c Clause) eval(rec Record) (bool, error) {
	v, ok := rec.Attr(c.Attr)
	if !ok {
		return false, nil
	}
	switch c.Op {
	case OpMatch:
		return v.kind == KindText && c.re.MatchString(v.text), nil
	case OpEquals, OpIs:
		return v.equal(c.literal), nil
	default:
		return false, fmt.Errorf("%s: %w", c, ErrUnsupportedOperator)
	}
}

// String returns the trimmed source text.
func (r *Rule) String() string { return r.text }

// Clauses returns a copy of the parsed clauses in source order.
func (r *Rule) Clauses() []Clause {
	return append([]Clause(nil), r.clauses...)
}

// Evaluate reports whether w satisfies every clause.
func (r *Rule) Evaluate(w model.Window) (bool, error) {
	return r.EvaluateRecord(WindowRecord(w))
}

// EvaluateRecord evaluates clauses in order and returns false at the first
// one that fails; later clauses are not evaluated.
func (r *Rule) EvaluateRecord(rec Record) (bool, error) {
	for _, c := range r.clauses {
		ok, err := c.eval(rec)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Matches is Evaluate with errors treated as a non-match.
func (r *Rule) Matches(w model.Window) bool {
	ok, err := r.Evaluate(w)
	return err == nil && ok
}

// FilterWindows returns the windows rule accepts, in input order.
func FilterWindows(rule *Rule, windows []model.Window) ([]model.Window, error) {
	result := make([]model.Window, 0, len(windows))
	for _, w := range windows {
		ok, err := rule.Evaluate(w)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, w)
		}
	}
	return result, nil
}

// ClauseResult is one line of an evaluation trace.
type ClauseResult struct {
	Clause    string `yaml:"clause"          json:"clause"`
	Evaluated bool   `yaml:"evaluated"       json:"evaluated"`
	Passed    bool   `yaml:"passed"          json:"passed"`
	Error     string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Explain evaluates rec the same way EvaluateRecord does and reports what
// happened to each clause. Clauses after the first failure are returned with
// Evaluated set to false.
func (r *Rule) Explain(rec Record) (bool, []ClauseResult) {
	results := make([]ClauseResult, len(r.clauses))
	passed := true
	for i, c := range r.clauses {
		results[i].Clause = c.String()
		if !passed {
			continue
		}
		results[i].Evaluated = true
		ok, err := c.eval(rec)
		if err != nil {
			results[i].Error = err.Error()
		}
		results[i].Passed = ok && err == nil
		passed = results[i].Passed
	}
	return passed, results
}
