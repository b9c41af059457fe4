package apiexplorer

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/toyz/apiexplorer/internal/utils"
)

// ErrUnknownConstraint is returned for constraint tokens with no registered factory
var ErrUnknownConstraint = errors.New("unknown route constraint")

// RouteConstraint is a resolved inline route constraint such as int or range(1,10)
type RouteConstraint struct {
	Name    string
	Args    []string
	accepts func(reflect.Type) bool
	match   func(string) bool
}

// NewRouteConstraint builds a constraint from a type check and a value check.
// Either function may be nil, meaning "accept everything".
func NewRouteConstraint(name string, args []string, accepts func(reflect.Type) bool, match func(string) bool) RouteConstraint {
	return RouteConstraint{Name: name, Args: args, accepts: accepts, match: match}
}

// Token renders the constraint the way it is written in a template
func (c RouteConstraint) Token() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + "(" + strings.Join(c.Args, ",") + ")"
}

// Accepts reports whether a parameter of type t can hold values the constraint admits.
// String parameters accept every constraint.
func (c RouteConstraint) Accepts(t reflect.Type) bool {
	t = derefType(t)
	if t == nil || c.accepts == nil || t.Kind() == reflect.String {
		return true
	}
	return c.accepts(t)
}

// Match reports whether a literal segment value satisfies the constraint
func (c RouteConstraint) Match(value string) bool {
	return c.match == nil || c.match(value)
}

// ConstraintFactory builds a constraint from its arguments
type ConstraintFactory func(args []string) (RouteConstraint, error)

// ConstraintResolver maps constraint tokens to constraints
type ConstraintResolver interface {
	ResolveConstraint(name string, args []string) (RouteConstraint, error)
}

// ConstraintRegistry is the default ConstraintResolver, keyed by lower-case name
type ConstraintRegistry struct {
	factories *utils.Registry[string, ConstraintFactory]
	aliases   map[string]string
}

// NewConstraintRegistry returns an empty registry
func NewConstraintRegistry() *ConstraintRegistry {
	return &ConstraintRegistry{
		factories: utils.NewRegistry[string, ConstraintFactory]("route constraints"),
		aliases:   make(map[string]string),
	}
}

// DefaultConstraintResolver returns a registry holding the built-in constraints
func DefaultConstraintResolver() *ConstraintRegistry {
	r := NewConstraintRegistry()
	for name, factory := range builtinConstraints {
		r.Register(name, factory)
	}
	r.Alias("UUID", "uuid")
	r.Alias("long", "int")
	return r
}

// Register adds or replaces a constraint factory
func (r *ConstraintRegistry) Register(name string, factory ConstraintFactory) {
	r.factories.Register(strings.ToLower(name), factory)
}

// Alias makes alias resolve to target
func (r *ConstraintRegistry) Alias(alias, target string) {
	r.aliases[strings.ToLower(alias)] = strings.ToLower(target)
}

// Names returns the registered constraint names in order
func (r *ConstraintRegistry) Names() []string {
	return r.factories.List()
}

// ResolveConstraint implements ConstraintResolver
func (r *ConstraintRegistry) ResolveConstraint(name string, args []string) (RouteConstraint, error) {
	key := strings.ToLower(name)
	factory, ok := r.factories.Get(key)
	if !ok {
		target, isAlias := r.aliases[key]
		if isAlias {
			factory, ok = r.factories.Get(target)
		}
	}
	if !ok {
		return RouteConstraint{}, fmt.Errorf("%w %q", ErrUnknownConstraint, name)
	}
	c, err := factory(args)
	if err != nil {
		return RouteConstraint{}, fmt.Errorf("constraint %s: %w", name, err)
	}
	return c, nil
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	alphaExpr = regexp.MustCompile(`^[a-zA-Z]*$`)
)

var builtinConstraints = map[string]ConstraintFactory{
	"int":       simple("int", isInteger, isIntValue),
	"bool":      simple("bool", isKind(reflect.Bool), isBoolValue),
	"float":     simple("float", isFloat, isFloatValue),
	"double":    simple("double", isFloat, isFloatValue),
	"decimal":   simple("decimal", isFloat, isFloatValue),
	"uuid":      simple("uuid", isUUID, isUUIDValue),
	"guid":      simple("guid", isUUID, isUUIDValue),
	"alpha":     simple("alpha", isTextual, alphaExpr.MatchString),
	"datetime":  simple("datetime", isTime, isDateTime),
	"string":    simple("string", isTextual, nil),
	"min":       numericBound("min", func(v, n float64) bool { return v >= n }),
	"max":       numericBound("max", func(v, n float64) bool { return v <= n }),
	"range":     rangeConstraint,
	"length":    lengthConstraint,
	"minlength": lengthBound("minlength", func(l, n int) bool { return l >= n }),
	"maxlength": lengthBound("maxlength", func(l, n int) bool { return l <= n }),
	"regex":     regexConstraint,
}

func simple(name string, accepts func(reflect.Type) bool, match func(string) bool) ConstraintFactory {
	return func(args []string) (RouteConstraint, error) {
		if len(args) != 0 {
			return RouteConstraint{}, fmt.Errorf("takes no arguments, got %d", len(args))
		}
		return NewRouteConstraint(name, nil, accepts, match), nil
	}
}

func numericBound(name string, cmp func(v, n float64) bool) ConstraintFactory {
	return func(args []string) (RouteConstraint, error) {
		n, err := oneNumber(args)
		if err != nil {
			return RouteConstraint{}, err
		}
		return NewRouteConstraint(name, args, isNumeric, func(v string) bool {
			f, err := strconv.ParseFloat(v, 64)
			return err == nil && cmp(f, n)
		}), nil
	}
}

func rangeConstraint(args []string) (RouteConstraint, error) {
	if len(args) != 2 {
		return RouteConstraint{}, fmt.Errorf("takes 2 arguments, got %d", len(args))
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return RouteConstraint{}, fmt.Errorf("invalid lower bound %q", args[0])
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return RouteConstraint{}, fmt.Errorf("invalid upper bound %q", args[1])
	}
	if lo > hi {
		return RouteConstraint{}, fmt.Errorf("lower bound %v exceeds upper bound %v", lo, hi)
	}
	return NewRouteConstraint("range", args, isNumeric, func(v string) bool {
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f >= lo && f <= hi
	}), nil
}

func lengthConstraint(args []string) (RouteConstraint, error) {
	switch len(args) {
	case 1:
		return lengthBound("length", func(l, n int) bool { return l == n })(args)
	case 2:
		lo, err1 := strconv.Atoi(strings.TrimSpace(args[0]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(args[1]))
		if err1 != nil || err2 != nil || lo > hi {
			return RouteConstraint{}, fmt.Errorf("invalid length bounds %v", args)
		}
		return NewRouteConstraint("length", args, isTextual, func(v string) bool {
			l := utf8.RuneCountInString(v)
			return l >= lo && l <= hi
		}), nil
	}
	return RouteConstraint{}, fmt.Errorf("takes 1 or 2 arguments, got %d", len(args))
}

func lengthBound(name string, cmp func(l, n int) bool) ConstraintFactory {
	return func(args []string) (RouteConstraint, error) {
		if len(args) != 1 {
			return RouteConstraint{}, fmt.Errorf("takes 1 argument, got %d", len(args))
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n < 0 {
			return RouteConstraint{}, fmt.Errorf("invalid length %q", args[0])
		}
		return NewRouteConstraint(name, args, isTextual, func(v string) bool {
			return cmp(utf8.RuneCountInString(v), n)
		}), nil
	}
}

func regexConstraint(args []string) (RouteConstraint, error) {
	if len(args) == 0 {
		return RouteConstraint{}, errors.New("takes a pattern argument")
	}
	// patterns may contain commas, which the template parser splits on
	pattern := strings.Join(args, ",")
	expr, err := regexp.Compile(pattern)
	if err != nil {
		return RouteConstraint{}, fmt.Errorf("invalid pattern: %w", err)
	}
	return NewRouteConstraint("regex", []string{pattern}, isTextual, expr.MatchString), nil
}

func oneNumber(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("takes 1 argument, got %d", len(args))
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isKind(kinds ...reflect.Kind) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		for _, k := range kinds {
			if t.Kind() == k {
				return true
			}
		}
		return false
	}
}

var (
	isInteger = isKind(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64)
	isFloat = isKind(reflect.Float32, reflect.Float64)
)

func isNumeric(t reflect.Type) bool {
	return isInteger(t) || isFloat(t)
}

func isUUID(t reflect.Type) bool {
	return t == uuidType || (t.Kind() == reflect.Array && t.Len() == 16 && t.Elem().Kind() == reflect.Uint8)
}

func isTextual(t reflect.Type) bool {
	return t.Kind() == reflect.String || t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func isTime(t reflect.Type) bool {
	return t == timeType
}

func isIntValue(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isBoolValue(v string) bool {
	_, err := strconv.ParseBool(v)
	return err == nil
}

func isUUIDValue(v string) bool {
	return uuid.Validate(v) == nil
}

func isFloatValue(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func isDateTime(v string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
