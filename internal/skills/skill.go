package skills

import (
	"context"
	"fmt"
)

// Kind is the declared type of a skill parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindStrings Kind = "string[]"
	// KindObject carries free-form JSON data. It is exported to providers as
	// a string and accepts either an object or its JSON encoding.
	KindObject Kind = "object"
)

// Param describes a single skill parameter.
type Param struct {
	Name        string
	Kind        Kind
	Description string
	Optional    bool
}

// Result is the outcome of a skill execution. Output is always set, possibly
// to the empty string.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful result.
func OK(output string) Result {
	return Result{Success: true, Output: output}
}

// Fail builds a failed result with an empty output.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Executor runs a skill with validated parameters. A returned error is turned
// into a failed Result by the Registry.
type Executor func(ctx context.Context, params Params) (Result, error)

// Skill is a registered capability. Skills are immutable once registered.
type Skill struct {
	Name        string
	Description string
	Params      []Param
	Execute     Executor
}

// Params holds validated and coerced parameter values.
type Params map[string]any

// String returns a string parameter or "" when absent.
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Has reports whether the parameter was supplied.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Number returns a numeric parameter or def when absent.
func (p Params) Number(name string, def float64) float64 {
	if f, ok := p[name].(float64); ok {
		return f
	}
	return def
}

// Int returns a numeric parameter truncated to int, or def when absent.
func (p Params) Int(name string, def int) int {
	if f, ok := p[name].(float64); ok {
		return int(f)
	}
	return def
}

// Bool returns a boolean parameter or false when absent.
func (p Params) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// Strings returns a string-array parameter.
func (p Params) Strings(name string) []string {
	s, _ := p[name].([]string)
	return s
}

// Object returns an object parameter, or nil when absent.
func (p Params) Object(name string) map[string]any {
	m, _ := p[name].(map[string]any)
	return m
}
