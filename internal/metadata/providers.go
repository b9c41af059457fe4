package metadata

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// DetailProvider contributes one category of metadata about a member.
// Provide receives the record folded so far and returns it with its own
// contribution added; fields already set by earlier providers are kept.
type DetailProvider interface {
	Name() string
	Provide(member Member, partial Partial) (Partial, error)
}

// ProviderFunc adapts a function to DetailProvider
type ProviderFunc struct {
	name string
	fn   func(Member, Partial) (Partial, error)
}

// NewProvider creates a named provider from fn
func NewProvider(name string, fn func(Member, Partial) (Partial, error)) ProviderFunc {
	return ProviderFunc{name: name, fn: fn}
}

func (p ProviderFunc) Name() string { return p.name }

func (p ProviderFunc) Provide(member Member, partial Partial) (Partial, error) {
	return p.fn(member, partial)
}

// DefaultProviders returns the built-in chain in priority order:
// binding, validation, annotations
func DefaultProviders() []DetailProvider {
	return []DetailProvider{
		NewProvider("binding", bindingProvider),
		NewProvider("validation", validationProvider),
		NewProvider("annotations", annotationProvider),
	}
}

// bindingTags maps struct tags to the source they select, in lookup order
var bindingTags = []struct {
	tag    string
	source apiexplorer.BindingSource
}{
	{"path", apiexplorer.SourcePath},
	{"query", apiexplorer.SourceQuery},
	{"header", apiexplorer.SourceHeader},
	{"cookie", apiexplorer.SourceCustom},
	{"form", apiexplorer.SourceForm},
	{"body", apiexplorer.SourceBody},
}

func bindingProvider(m Member, p Partial) (Partial, error) {
	for _, bt := range bindingTags {
		value, ok := m.LookupTag(bt.tag)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(value, ",")
		if name == "-" {
			continue
		}
		if bt.tag == "body" {
			// body:"false" opts a Body-named field out
			if enabled, err := strconv.ParseBool(name); err == nil && !enabled {
				continue
			}
			name = ""
		}
		p.BindingSource = Ptr(bt.source)
		if name != "" {
			p.BinderModelName = Ptr(name)
		}
		return p, nil
	}

	if provider, ok := asInterface[apiexplorer.BindingSourceProvider](m.ModelType); ok {
		p.BindingSource = Ptr(provider.BindingSource())
	}
	return p, nil
}

// constraintTags are the schema style tags, emitted in this order
var constraintTags = []string{"minLength", "maxLength", "minimum", "maximum", "pattern", "enum", "minItems", "maxItems"}

func validationProvider(m Member, p Partial) (Partial, error) {
	if m.IsType() {
		return p, nil
	}

	var constraints []apiexplorer.Constraint
	add := func(c apiexplorer.Constraint) {
		for _, existing := range constraints {
			if existing == c {
				return
			}
		}
		constraints = append(constraints, c)
	}

	for _, tag := range []string{"validate", "binding"} {
		for _, rule := range splitRules(m.Tag(tag)) {
			name, value, _ := strings.Cut(rule, "=")
			if name == "required" {
				p.IsRequired = Ptr(true)
			}
			add(apiexplorer.Constraint{Name: name, Value: value})
		}
	}
	for _, tag := range constraintTags {
		if value := m.Tag(tag); value != "" {
			add(apiexplorer.Constraint{Name: tag, Value: value})
		}
	}

	if len(constraints) > 0 {
		p.Constraints = constraints
	}
	return p, nil
}

// splitRules splits a go-playground rule list, stopping at dive
func splitRules(tag string) []string {
	if tag == "" || tag == "-" {
		return nil
	}
	var rules []string
	for _, rule := range strings.Split(tag, ",") {
		rule = strings.TrimSpace(rule)
		switch rule {
		case "", "omitempty":
			continue
		case "dive":
			return rules
		}
		rules = append(rules, rule)
	}
	return rules
}

func annotationProvider(m Member, p Partial) (Partial, error) {
	if m.IsType() {
		if namer, ok := asInterface[apiexplorer.DisplayNamer](m.ModelType); ok {
			p.DisplayName = Ptr(namer.DisplayName())
		}
		return p, nil
	}

	for _, tag := range []string{"display", "doc"} {
		if value := m.Tag(tag); value != "" {
			p.DisplayName = Ptr(value)
			break
		}
	}
	if value, ok := m.LookupTag("required"); ok {
		required, err := strconv.ParseBool(value)
		if err != nil {
			return p, err
		}
		p.IsRequired = Ptr(required)
	}
	if value, ok := m.LookupTag("readonly"); ok {
		readOnly, err := strconv.ParseBool(value)
		if err != nil {
			return p, err
		}
		p.IsReadOnly = Ptr(readOnly)
	} else if m.Tag("json") == "-" {
		p.IsReadOnly = Ptr(true)
	}
	if value, ok := m.LookupTag("default"); ok {
		p.DefaultValue = Ptr(value)
	}
	return p, nil
}

// asInterface reports whether t (or *t) implements I and returns an instance to call it on
func asInterface[I any](t reflect.Type) (I, bool) {
	var zero I
	if t == nil || t.Kind() == reflect.Interface {
		return zero, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ptr := reflect.New(t)
	if v, ok := ptr.Elem().Interface().(I); ok {
		return v, true
	}
	if v, ok := ptr.Interface().(I); ok {
		return v, true
	}
	return zero, false
}
