package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
)

// Constraint restricts the values a field accepts.
type Constraint interface {
	// Kind is the constraint name as written in specs, e.g. "min_length".
	Kind() string

	// Check returns nil when value satisfies the constraint.
	Check(value any) error
}

// category groups constraint kinds by the field types they apply to.
type category int

const (
	catString category = iota
	catNumber
	catInt
	catBool
	catList
	catAny
)

type constraintDef struct {
	cat   category
	build func(arg any) (func(v any) error, error)
}

// predicate is the Constraint every builder produces.
type predicate struct {
	kind  string
	check func(v any) error
}

func (p *predicate) Kind() string          { return p.kind }
func (p *predicate) Check(value any) error { return p.check(value) }

// each applies an element constraint to every item of a list.
type each struct {
	inner Constraint
}

func (e *each) Kind() string { return e.inner.Kind() }

func (e *each) Check(value any) error {
	items, ok := toList(value)
	if !ok {
		return fmt.Errorf("expected a list, got %T", value)
	}
	for i, item := range items {
		if err := e.inner.Check(item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var constraintDefs = map[string]constraintDef{
	"min_length": {catString, intArg(func(n int64) func(any) error {
		return onString(func(s string) error {
			if int64(len([]rune(s))) < n {
				return fmt.Errorf("length must be at least %d", n)
			}
			return nil
		})
	})},
	"max_length": {catString, intArg(func(n int64) func(any) error {
		return onString(func(s string) error {
			if int64(len([]rune(s))) > n {
				return fmt.Errorf("length must be at most %d", n)
			}
			return nil
		})
	})},
	"pattern":     {catString, buildPattern},
	"starts_with": {catString, stringArg(func(p string) func(string) error { return expect(strings.HasPrefix, p, "start with") })},
	"ends_with":   {catString, stringArg(func(p string) func(string) error { return expect(strings.HasSuffix, p, "end with") })},
	"contains":    {catString, stringArg(func(p string) func(string) error { return expect(strings.Contains, p, "contain") })},
	"lowercase": {catString, noArg(onString(func(s string) error {
		if s != strings.ToLower(s) {
			return errors.New("must be lowercase")
		}
		return nil
	}))},
	"uppercase": {catString, noArg(onString(func(s string) error {
		if s != strings.ToUpper(s) {
			return errors.New("must be uppercase")
		}
		return nil
	}))},
	"email": {catString, noArg(onString(func(s string) error {
		if !emailPattern.MatchString(s) {
			return errors.New("must be an email address")
		}
		return nil
	}))},
	"uuid": {catString, noArg(onString(func(s string) error {
		if _, err := uuid.Parse(s); err != nil {
			return errors.New("must be a UUID")
		}
		return nil
	}))},
	"min":         {catNumber, compare(func(v, n float64) bool { return v >= n }, "at least")},
	"max":         {catNumber, compare(func(v, n float64) bool { return v <= n }, "at most")},
	"gt":          {catNumber, compare(func(v, n float64) bool { return v > n }, "greater than")},
	"lt":          {catNumber, compare(func(v, n float64) bool { return v < n }, "less than")},
	"multiple_of": {catNumber, buildMultipleOf},
	"positive":    {catNumber, noArg(numbers(func(f float64) bool { return f > 0 }, "must be positive"))},
	"negative":    {catNumber, noArg(numbers(func(f float64) bool { return f < 0 }, "must be negative"))},
	"non_zero":    {catNumber, noArg(numbers(func(f float64) bool { return f != 0 }, "must not be zero"))},
	"even":        {catInt, noArg(ints(func(n int64) bool { return n%2 == 0 }, "must be even"))},
	"odd":         {catInt, noArg(ints(func(n int64) bool { return n%2 != 0 }, "must be odd"))},
	"power_of_two": {catInt, noArg(ints(func(n int64) bool {
		return n > 0 && n&(n-1) == 0
	}, "must be a power of two"))},
	"is_true":  {catBool, noArg(bools(true))},
	"is_false": {catBool, noArg(bools(false))},
	"min_items": {catList, intArg(func(n int64) func(any) error {
		return lists(func(items []any) error {
			if int64(len(items)) < n {
				return fmt.Errorf("must have at least %d items", n)
			}
			return nil
		})
	})},
	"max_items": {catList, intArg(func(n int64) func(any) error {
		return lists(func(items []any) error {
			if int64(len(items)) > n {
				return fmt.Errorf("must have at most %d items", n)
			}
			return nil
		})
	})},
	"unique": {catList, noArg(lists(func(items []any) error {
		for i := range items {
			for j := i + 1; j < len(items); j++ {
				if sameValue(items[i], items[j]) {
					return fmt.Errorf("items must be unique, %v repeats", items[i])
				}
			}
		}
		return nil
	}))},
	"expr":   {catAny, buildExpr},
	"one_of": {catAny, buildOneOf},
}

// ConstraintKinds returns the known constraint kinds, sorted.
func ConstraintKinds() []string {
	kinds := make([]string, 0, len(constraintDefs))
	for k := range constraintDefs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ErrUnknownConstraint is returned for constraint kinds that do not exist.
var ErrUnknownConstraint = errors.New("unknown constraint")

// NewConstraint builds the constraint kind with argument arg for a field of
// type ft. On list fields, element constraints apply to every item while
// min_items, max_items and unique apply to the list itself.
func NewConstraint(kind string, arg any, ft FieldType) (Constraint, error) {
	def, ok := constraintDefs[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownConstraint, kind)
	}

	target := ft
	wrap := false
	if ft.IsList() && def.cat != catList && def.cat != catAny {
		target = ft.Elem()
		wrap = true
	}
	if !applies(def.cat, target) {
		return nil, fmt.Errorf("constraint %q does not apply to %s fields", kind, ft)
	}

	check, err := def.build(arg)
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", kind, err)
	}
	c := Constraint(&predicate{kind: kind, check: check})
	if wrap {
		c = &each{inner: c}
	}
	return c, nil
}

// MustConstraint is NewConstraint that panics on error.
func MustConstraint(kind string, arg any, ft FieldType) Constraint {
	c, err := NewConstraint(kind, arg, ft)
	if err != nil {
		panic(err)
	}
	return c
}

func applies(cat category, t FieldType) bool {
	switch cat {
	case catString:
		return t == TypeString
	case catNumber:
		return t == TypeInt || t == TypeFloat
	case catInt:
		return t == TypeInt
	case catBool:
		return t == TypeBool
	case catList:
		return t.IsList()
	case catAny:
		return true
	default:
		return false
	}
}

func noArg(check func(any) error) func(any) (func(any) error, error) {
	return func(arg any) (func(any) error, error) {
		if arg != nil {
			if b, ok := arg.(bool); !ok || !b {
				return nil, fmt.Errorf("takes no value, got %v", arg)
			}
		}
		return check, nil
	}
}

func intArg(build func(n int64) func(any) error) func(any) (func(any) error, error) {
	return func(arg any) (func(any) error, error) {
		n, ok := toInt(arg)
		if !ok || n < 0 {
			return nil, fmt.Errorf("value must be a non-negative integer, got %v", arg)
		}
		return build(n), nil
	}
}

func stringArg(build func(s string) func(string) error) func(any) (func(any) error, error) {
	return func(arg any) (func(any) error, error) {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("value must be a string, got %v", arg)
		}
		return onString(build(s)), nil
	}
}

func expect(match func(s, p string) bool, p, verb string) func(string) error {
	return func(s string) error {
		if !match(s, p) {
			return fmt.Errorf("must %s %q", verb, p)
		}
		return nil
	}
}

func onString(check func(s string) error) func(any) error {
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
		return check(s)
	}
}

func numbers(ok func(f float64) bool, msg string) func(any) error {
	return func(v any) error {
		f, isNum := toFloat(v)
		if !isNum {
			return fmt.Errorf("expected a number, got %T", v)
		}
		if !ok(f) {
			return errors.New(msg)
		}
		return nil
	}
}

func ints(ok func(n int64) bool, msg string) func(any) error {
	return func(v any) error {
		n, isInt := toInt(v)
		if !isInt {
			return fmt.Errorf("expected an integer, got %v", v)
		}
		if !ok(n) {
			return errors.New(msg)
		}
		return nil
	}
}

func bools(want bool) func(any) error {
	return func(v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected a bool, got %T", v)
		}
		if b != want {
			return fmt.Errorf("must be %t", want)
		}
		return nil
	}
}

func lists(check func(items []any) error) func(any) error {
	return func(v any) error {
		items, ok := toList(v)
		if !ok {
			return fmt.Errorf("expected a list, got %T", v)
		}
		return check(items)
	}
}

func compare(ok func(v, n float64) bool, phrase string) func(any) (func(any) error, error) {
	return func(arg any) (func(any) error, error) {
		n, isNum := toFloat(arg)
		if !isNum {
			return nil, fmt.Errorf("value must be a number, got %v", arg)
		}
		msg := fmt.Sprintf("must be %s %v", phrase, arg)
		return numbers(func(f float64) bool { return ok(f, n) }, msg), nil
	}
}

func buildMultipleOf(arg any) (func(any) error, error) {
	n, ok := toFloat(arg)
	if !ok || n == 0 {
		return nil, fmt.Errorf("value must be a non-zero number, got %v", arg)
	}
	msg := fmt.Sprintf("must be a multiple of %v", arg)
	return numbers(func(f float64) bool {
		q := f / n
		return q == math.Trunc(q)
	}, msg), nil
}

func buildPattern(arg any) (func(any) error, error) {
	src, ok := arg.(string)
	if !ok {
		return nil, fmt.Errorf("value must be a string, got %v", arg)
	}
	re, err := regexp.Compile(`^(?:` + src + `)$`)
	if err != nil {
		return nil, err
	}
	return onString(func(s string) error {
		if !re.MatchString(s) {
			return fmt.Errorf("must match %q", src)
		}
		return nil
	}), nil
}

// buildExpr compiles a boolean expr-lang expression over the variable
// value.
func buildExpr(arg any) (func(any) error, error) {
	src, ok := arg.(string)
	if !ok || strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("value must be an expression, got %v", arg)
	}
	program, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return func(v any) error {
		return runExpr(program, src, v)
	}, nil
}

func runExpr(program *vm.Program, src string, v any) error {
	out, err := expr.Run(program, map[string]any{"value": v})
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", src, err)
	}
	if ok, _ := out.(bool); !ok {
		return fmt.Errorf("must satisfy %s", src)
	}
	return nil
}

func buildOneOf(arg any) (func(any) error, error) {
	options, ok := toList(arg)
	if !ok || len(options) == 0 {
		return nil, fmt.Errorf("value must be a non-empty list, got %v", arg)
	}
	return func(v any) error {
		for _, o := range options {
			if sameValue(v, o) {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", options)
	}, nil
}

// sameValue compares decoded values, treating numbers by magnitude.
func sameValue(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}
