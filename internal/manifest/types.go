package manifest

import (
	"context"
	"fmt"
	"mime/multipart"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// builtinTypes are the type names every manifest can use
var builtinTypes = map[string]reflect.Type{
	"string":   reflect.TypeOf(""),
	"bool":     reflect.TypeOf(false),
	"int":      reflect.TypeOf(int(0)),
	"int8":     reflect.TypeOf(int8(0)),
	"int16":    reflect.TypeOf(int16(0)),
	"int32":    reflect.TypeOf(int32(0)),
	"int64":    reflect.TypeOf(int64(0)),
	"uint":     reflect.TypeOf(uint(0)),
	"uint8":    reflect.TypeOf(uint8(0)),
	"uint16":   reflect.TypeOf(uint16(0)),
	"uint32":   reflect.TypeOf(uint32(0)),
	"uint64":   reflect.TypeOf(uint64(0)),
	"byte":     reflect.TypeOf(byte(0)),
	"float32":  reflect.TypeOf(float32(0)),
	"float64":  reflect.TypeOf(float64(0)),
	"any":      reflect.TypeOf((*any)(nil)).Elem(),
	"uuid":     reflect.TypeOf(uuid.UUID{}),
	"time":     reflect.TypeOf(time.Time{}),
	"duration": reflect.TypeOf(time.Duration(0)),
	"context":  reflect.TypeOf((*context.Context)(nil)).Elem(),
	"file":     reflect.TypeOf((*multipart.FileHeader)(nil)),
	"files":    reflect.TypeOf([]*multipart.FileHeader(nil)),
	"form":     reflect.TypeOf((*multipart.Form)(nil)),
}

// BuiltinTypeNames returns the names of the built-in types in lexical order
func BuiltinTypeNames() []string {
	names := make([]string, 0, len(builtinTypes))
	for name := range builtinTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var (
	namesMu     sync.RWMutex
	names       = make(map[reflect.Type]string)
	installOnce sync.Once
)

// nameType records the display name of a synthesized type and makes sure
// apiexplorer.TypeName consults the record
func nameType(t reflect.Type, name string) {
	installOnce.Do(func() { apiexplorer.SetTypeNamer(lookupName) })

	namesMu.Lock()
	defer namesMu.Unlock()
	names[t] = name
}

func lookupName(t reflect.Type) (string, bool) {
	switch t.Kind() {
	case reflect.Slice:
		if elem, ok := lookupName(t.Elem()); ok {
			return "[]" + elem, true
		}
		return "", false
	case reflect.Pointer:
		if elem, ok := lookupName(t.Elem()); ok {
			return "*" + elem, true
		}
		return "", false
	case reflect.Map:
		if elem, ok := lookupName(t.Elem()); ok {
			return "map[" + apiexplorer.TypeName(t.Key()) + "]" + elem, true
		}
		return "", false
	}

	namesMu.RLock()
	defer namesMu.RUnlock()
	name, ok := names[t]
	return name, ok
}

// typeBuilder resolves type expressions of one manifest. Declared types become
// reflect.StructOf types; they are built once and memoized.
type typeBuilder struct {
	manifest *Manifest
	built    map[string]reflect.Type
	failed   map[string]error
	visiting map[string]bool
}

func newTypeBuilder(m *Manifest) *typeBuilder {
	return &typeBuilder{
		manifest: m,
		built:    make(map[string]reflect.Type),
		failed:   make(map[string]error),
		visiting: make(map[string]bool),
	}
}

// buildAll builds every declared type and returns each distinct failure once
func (b *typeBuilder) buildAll() error {
	var errs *apierrors.MultipleErrors
	seen := make(map[error]bool)
	for _, name := range b.manifest.TypeNames() {
		if _, err := b.named(name); err != nil && !seen[err] {
			seen[err] = true
			apierrors.AddToMultiple(&errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// resolve turns a type expression into a type. Supported forms are builtin
// names, declared names, []T, *T and map[string]T.
func (b *typeBuilder) resolve(expr string) (reflect.Type, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return nil, apierrors.NewValidationError("type", "a type expression", "empty")
	case strings.HasPrefix(expr, "[]"):
		elem, err := b.resolve(expr[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(expr, "*"):
		elem, err := b.resolve(expr[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(expr, "map[string]"):
		elem, err := b.resolve(expr[len("map[string]"):])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(builtinTypes["string"], elem), nil
	}

	if t, ok := builtinTypes[expr]; ok {
		return t, nil
	}
	return b.named(expr)
}

func (b *typeBuilder) named(name string) (reflect.Type, error) {
	if t, ok := b.built[name]; ok {
		return t, nil
	}
	if err, ok := b.failed[name]; ok {
		return nil, err
	}

	spec, ok := b.manifest.Types[name]
	if !ok {
		known := append(b.manifest.TypeNames(), BuiltinTypeNames()...)
		return nil, apierrors.NewValidationError("type", "a builtin or declared type", fmt.Sprintf("'%s'", name)).
			WithValue(name).
			WithSuggestion("Known types: " + strings.Join(known, ", "))
	}
	if b.visiting[name] {
		return nil, apierrors.NewValidationError("types."+name, "a non-recursive type", "a cycle through "+name).
			WithLocation(b.manifest.location(spec.Pos)).
			WithSuggestion("Types built from manifests cannot refer to themselves, even through pointers or slices")
	}

	b.visiting[name] = true
	defer delete(b.visiting, name)

	fields := make([]reflect.StructField, 0, len(spec.Fields))
	for _, field := range spec.Fields {
		ft, err := b.resolve(field.Type)
		if err != nil {
			err = locate(err, b.manifest.location(field.Pos))
			b.failed[name] = err
			return nil, err
		}
		fields = append(fields, reflect.StructField{
			Name: GoFieldName(field.Name),
			Type: ft,
			Tag:  fieldTag(field),
		})
	}

	t := reflect.StructOf(fields)
	nameType(t, name)
	b.built[name] = t
	return t, nil
}

// fieldTag returns the field's tag, adding a json key with the manifest name
// when the tag does not set one
func fieldTag(field FieldSpec) reflect.StructTag {
	tag := reflect.StructTag(strings.TrimSpace(field.Tag))
	if _, ok := tag.Lookup("json"); ok {
		return tag
	}
	jsonTag := fmt.Sprintf("json:%q", field.Name)
	if tag == "" {
		return reflect.StructTag(jsonTag)
	}
	return reflect.StructTag(jsonTag + " " + string(tag))
}

// controllerType returns the owner type of a controller. Each controller name
// yields a distinct struct type with one marker field named after it.
func controllerType(name string) reflect.Type {
	typeName := controllerTypeName(name)
	t := reflect.StructOf([]reflect.StructField{{
		Name: typeName,
		Type: reflect.TypeOf(struct{}{}),
	}})
	nameType(t, typeName)
	return t
}

// locate attaches loc to err unless it already carries a line
func locate(err error, loc apierrors.SourceLocation) error {
	type located interface {
		Location() apierrors.SourceLocation
	}
	if l, ok := err.(located); ok && l.Location().Line > 0 {
		return err
	}
	switch e := err.(type) {
	case *apierrors.ValidationError:
		return e.WithLocation(loc)
	case *apierrors.SchemaError:
		return e.WithLocation(loc)
	case *apierrors.SyntaxError:
		return e.WithLocation(loc)
	}
	return apierrors.Wrap(apierrors.ValidationErrorCode, "invalid declaration", err).WithLocation(loc)
}
