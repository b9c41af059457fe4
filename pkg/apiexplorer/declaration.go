package apiexplorer

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ParameterDeclaration is one (name, type, attributes) entry of a handler signature
type ParameterDeclaration struct {
	Name       string
	Type       reflect.Type
	Attributes []Attribute
}

// Handler describes the code that serves an operation
type Handler struct {
	// Name is the action name, used for [action] tokens and operation ids
	Name string
	// OwnerType is the controller type, nil for free functions
	OwnerType  reflect.Type
	Parameters []ParameterDeclaration
	// Returns is the success payload type, nil when the handler returns nothing
	Returns reflect.Type
	// Attributes are action-level attributes
	Attributes []Attribute
	// OwnerAttributes are controller-level attributes
	OwnerAttributes []Attribute
}

// FuncHandler derives a handler from a Go function value.
// Parameter names are taken from names in order; missing names default to argN.
// The first non-error result becomes the payload type.
func FuncHandler(name string, fn any, names ...string) Handler {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("apiexplorer: FuncHandler(%s) requires a function, got %T", name, fn))
	}
	if name == "" {
		name = FuncName(fn)
	}
	return Handler{
		Name:       name,
		Parameters: parametersOf(fnType, 0, names),
		Returns:    payloadOf(fnType),
	}
}

// MethodHandler derives a handler from the named method of owner's type.
// owner may be a value or a pointer; the receiver does not become a parameter.
func MethodHandler(owner any, method string, names ...string) Handler {
	ownerType := reflect.TypeOf(owner)
	m, ok := ownerType.MethodByName(method)
	if !ok {
		panic(fmt.Sprintf("apiexplorer: %s has no method %s", ownerType, method))
	}
	return Handler{
		Name:       method,
		OwnerType:  ownerType,
		Parameters: parametersOf(m.Type, 1, names),
		Returns:    payloadOf(m.Type),
	}
}

// FuncName returns the short name of a function value, e.g. "(*UserController).Get"
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return ShortFuncName(f.Name())
}

// ShortFuncName trims the package path and method value suffix from a runtime
// function name: "example.com/app/api.(*UserController).Get-fm" becomes
// "(*UserController).Get"
func ShortFuncName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func parametersOf(fnType reflect.Type, skip int, names []string) []ParameterDeclaration {
	params := make([]ParameterDeclaration, 0, fnType.NumIn()-skip)
	for i := skip; i < fnType.NumIn(); i++ {
		idx := i - skip
		name := fmt.Sprintf("arg%d", idx)
		if idx < len(names) && names[idx] != "" {
			name = names[idx]
		}
		params = append(params, ParameterDeclaration{Name: name, Type: fnType.In(i)})
	}
	return params
}

func payloadOf(fnType reflect.Type) reflect.Type {
	for i := 0; i < fnType.NumOut(); i++ {
		if out := fnType.Out(i); out != errorType {
			return out
		}
	}
	return nil
}

// WithAttributes returns a copy of h with action-level attributes appended
func (h Handler) WithAttributes(attrs ...Attribute) Handler {
	h.Attributes = append(append([]Attribute(nil), h.Attributes...), attrs...)
	return h
}

// WithOwnerAttributes returns a copy of h with controller-level attributes appended
func (h Handler) WithOwnerAttributes(attrs ...Attribute) Handler {
	h.OwnerAttributes = append(append([]Attribute(nil), h.OwnerAttributes...), attrs...)
	return h
}

// WithParameterAttributes returns a copy of h with attrs appended to the named parameter.
// Unknown parameter names leave the handler unchanged.
func (h Handler) WithParameterAttributes(param string, attrs ...Attribute) Handler {
	params := make([]ParameterDeclaration, len(h.Parameters))
	copy(params, h.Parameters)
	for i := range params {
		if params[i].Name == param {
			params[i].Attributes = append(append([]Attribute(nil), params[i].Attributes...), attrs...)
		}
	}
	h.Parameters = params
	return h
}

// ControllerName returns the owner type name without pointer and "Controller" suffix
func (h Handler) ControllerName() string {
	return strings.TrimSuffix(OwnerTypeName(h.OwnerType), "Controller")
}

// OwnerTypeName returns the name of a controller type with pointers removed.
// Unnamed types, such as those built with reflect.StructOf, go through TypeName.
func OwnerTypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return TypeName(t)
}

// OperationDeclaration is a raw operation as supplied by the routing layer
type OperationDeclaration struct {
	// HTTPMethod is an optional method constraint supplied by the caller
	HTTPMethod string
	// RouteTemplate is optional when the handler carries its own route attributes
	RouteTemplate string
	Handler       Handler
	RouteValues   map[string]string
}

// Key returns a stable identifier of the declaration for diagnostics
func (d OperationDeclaration) Key() string {
	method := d.HTTPMethod
	if method == "" {
		method = "*"
	}
	return method + " " + d.RouteTemplate + " -> " + d.Handler.Name
}

// withDefaultRouteValues fills the controller and action route values when absent
func (d OperationDeclaration) withDefaultRouteValues() OperationDeclaration {
	values := make(map[string]string, len(d.RouteValues)+2)
	maps.Copy(values, d.RouteValues)
	if _, ok := values["controller"]; !ok {
		if name := d.Handler.ControllerName(); name != "" {
			values["controller"] = name
		}
	}
	if _, ok := values["action"]; !ok && d.Handler.Name != "" {
		values["action"] = d.Handler.Name
	}
	d.RouteValues = values
	return d
}

// DeclarationSource supplies the ordered operation declarations.
// Version changes whenever the declarations change.
type DeclarationSource interface {
	Declarations() []OperationDeclaration
	Version() int64
}

// StaticSource is an append-only, in-memory declaration source
type StaticSource struct {
	mu           sync.RWMutex
	declarations []OperationDeclaration
	version      int64
}

// NewStaticSource creates a source holding decls
func NewStaticSource(decls ...OperationDeclaration) *StaticSource {
	s := &StaticSource{}
	for _, decl := range decls {
		s.Add(decl)
	}
	return s
}

// Add appends a declaration and bumps the version; it returns s for chaining
func (s *StaticSource) Add(decl OperationDeclaration) *StaticSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.declarations = append(s.declarations, decl.withDefaultRouteValues())
	s.version++
	return s
}

// AddHandler appends a declaration for handler with an optional method and template
func (s *StaticSource) AddHandler(method, template string, handler Handler) *StaticSource {
	return s.Add(OperationDeclaration{HTTPMethod: method, RouteTemplate: template, Handler: handler})
}

// Declarations returns a copy of the declarations in insertion order
func (s *StaticSource) Declarations() []OperationDeclaration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]OperationDeclaration(nil), s.declarations...)
}

// Version returns the number of declarations added so far
func (s *StaticSource) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Len returns the number of declarations
func (s *StaticSource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.declarations)
}
