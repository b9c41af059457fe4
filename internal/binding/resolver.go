package binding

import (
	"reflect"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/metadata"
	"github.com/toyz/apiexplorer/internal/routing"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// containerTags mark a struct parameter as a container of individually bound fields
var containerTags = []string{"path", "query", "header", "cookie", "form", "body"}

// Resolved is one bound request value of an operation
type Resolved struct {
	// Name is the name the value is bound under
	Name string
	// Parameter is the handler parameter, or a synthesized one for container fields
	Parameter apiexplorer.ParameterDeclaration
	Source    apiexplorer.BindingSource
	// Metadata is the member metadata for container fields, the type metadata otherwise
	Metadata apiexplorer.ModelMetadata
	// Container names the handler parameter a field was expanded from
	Container string
	// Explicit is true when an attribute or tag selected the source
	Explicit bool
}

// Resolver determines where each handler parameter is bound from
type Resolver struct {
	cache *metadata.Cache
}

// NewResolver creates a resolver reading type metadata from cache
func NewResolver(cache *metadata.Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve returns the binding source of a single parameter.
// Order: explicit binding attribute, then type metadata (including the built-in
// overrides), then convention.
func (r *Resolver) Resolve(param apiexplorer.ParameterDeclaration, template routing.Template) (apiexplorer.BindingSource, error) {
	if attr, ok := apiexplorer.FindBindingAttribute(param.Attributes); ok {
		return attr.BindingSource(), nil
	}
	md, err := r.cache.GetMetadata(param.Type, "")
	if err != nil {
		return convention(param.Name, param.Type, template), err
	}
	if md.BindingSource != apiexplorer.SourceNone {
		return md.BindingSource, nil
	}
	return convention(param.Name, param.Type, template), nil
}

// ResolveAll resolves every parameter of an operation, expanding parameter
// containers into their fields. Metadata failures are collected and the
// affected parameter falls back to convention; more than one body yields an
// *apiexplorer.AmbiguousBindingError. The resolved list is returned either way.
func (r *Resolver) ResolveAll(method string, template routing.Template, params []apiexplorer.ParameterDeclaration) ([]Resolved, error) {
	errs := apierrors.NewMultipleErrors()
	var resolved []Resolved

	for _, param := range params {
		if attr, ok := apiexplorer.FindBindingAttribute(param.Attributes); ok {
			md, err := r.cache.GetMetadata(param.Type, "")
			errs.Add(err)
			name := param.Name
			if attr.ModelName() != "" {
				name = attr.ModelName()
			}
			resolved = append(resolved, Resolved{
				Name:      name,
				Parameter: param,
				Source:    attr.BindingSource(),
				Metadata:  md,
				Explicit:  true,
			})
			continue
		}

		if isContainer(param.Type) {
			fields, err := r.expand(param, template)
			errs.Add(err)
			resolved = append(resolved, fields...)
			continue
		}

		source, err := r.Resolve(param, template)
		errs.Add(err)
		md, _ := r.cache.GetMetadata(param.Type, "")
		resolved = append(resolved, Resolved{
			Name:      param.Name,
			Parameter: param,
			Source:    source,
			Metadata:  md,
			Explicit:  md.BindingSource != apiexplorer.SourceNone,
		})
	}

	var bodies []string
	for _, res := range resolved {
		if res.Source == apiexplorer.SourceBody {
			bodies = append(bodies, res.Name)
		}
	}
	if len(bodies) > 1 {
		errs.Add(apiexplorer.NewAmbiguousBindingError(method, template.RelativePath(), bodies))
	}

	return resolved, errs.ErrorOrNil()
}

// expand resolves the exported fields of a container parameter
func (r *Resolver) expand(param apiexplorer.ParameterDeclaration, template routing.Template) ([]Resolved, error) {
	errs := apierrors.NewMultipleErrors()
	owner := deref(param.Type)

	var fields []Resolved
	for i := 0; i < owner.NumField(); i++ {
		field := owner.Field(i)
		if !field.IsExported() {
			continue
		}

		md, err := r.cache.GetMetadata(param.Type, field.Name)
		if err != nil {
			errs.Add(err)
			md = apiexplorer.ModelMetadata{MemberName: field.Name, ModelType: field.Type}
		}

		name := field.Name
		if md.BinderModelName != "" {
			name = md.BinderModelName
		}
		source, explicit := md.BindingSource, true
		if source == apiexplorer.SourceNone {
			explicit = false
			if field.Name == "Body" {
				source = apiexplorer.SourceBody
			} else {
				source = convention(name, field.Type, template)
			}
		}

		fields = append(fields, Resolved{
			Name:      name,
			Parameter: apiexplorer.ParameterDeclaration{Name: field.Name, Type: field.Type},
			Source:    source,
			Metadata:  md,
			Container: param.Name,
			Explicit:  explicit,
		})
	}
	return fields, errs.ErrorOrNil()
}

// convention binds placeholders to the path, simple types to the query and
// everything else to the body
func convention(name string, t reflect.Type, template routing.Template) apiexplorer.BindingSource {
	switch {
	case template.HasPlaceholder(name):
		return apiexplorer.SourcePath
	case apiexplorer.IsSimpleType(t):
		return apiexplorer.SourceQuery
	}
	return apiexplorer.SourceBody
}

// isContainer reports whether t is a struct with binding tags on its fields
func isContainer(t reflect.Type) bool {
	t = deref(t)
	if t == nil || t.Kind() != reflect.Struct || apiexplorer.IsSimpleType(t) {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		for _, tag := range containerTags {
			if _, ok := f.Tag.Lookup(tag); ok {
				return true
			}
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
