package rules

import (
	"sort"
	"strconv"

	"github.com/mj1618/winwatch/internal/model"
)

// Kind is the runtime type of an attribute or literal.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a typed attribute value or rule literal.
type Value struct {
	kind Kind
	text string
	b    bool
}

// Null is the value of the none/null literal.
var Null = Value{kind: KindNull}

func Text(s string) Value { return Value{kind: KindText, text: s} }
func Bool(b bool) Value   { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return strconv.Quote(v.text)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// equal is type-and-value equality; values of different kinds never match.
func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// Record is anything a rule can be evaluated against.
type Record interface {
	Attr(name string) (Value, bool)
}

// Fields is a free-form Record, mostly useful for tests and for records
// that did not come from a window snapshot.
type Fields map[string]Value

func (f Fields) Attr(name string) (Value, bool) {
	v, ok := f[name]
	return v, ok
}

type attribute struct {
	kind Kind
	get  func(model.Window) Value
}

// attributes is the closed set of names a clause may reference.
var attributes = map[string]attribute{
	"title": {
		kind: KindText,
		get:  func(w model.Window) Value { return Text(w.Title) },
	},
	"visible": {
		kind: KindBool,
		get:  func(w model.Window) Value { return Bool(w.Visible) },
	},
}

// Attributes returns the attribute names rules may reference, sorted.
func Attributes() []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type windowRecord model.Window

// WindowRecord adapts a window to the Record interface.
func WindowRecord(w model.Window) Record {
	return windowRecord(w)
}

func (w windowRecord) Attr(name string) (Value, bool) {
	a, ok := attributes[name]
	if !ok {
		return Value{}, false
	}
	return a.get(model.Window(w)), true
}
