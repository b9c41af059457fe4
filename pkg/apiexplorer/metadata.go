package apiexplorer

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
)

// CompatibilityVersion selects version dependent metadata behaviour
type CompatibilityVersion int

const (
	// Version2 only treats explicitly marked members as required
	Version2 CompatibilityVersion = iota + 2
	// Version3 also treats non-nullable struct members as implicitly required
	Version3
)

// Latest is the default compatibility version
const Latest = Version3

func (v CompatibilityVersion) String() string {
	switch v {
	case Version2:
		return "Version2"
	case Version3:
		return "Version3"
	}
	return fmt.Sprintf("CompatibilityVersion(%d)", int(v))
}

// MetadataKey identifies a cached metadata entry. Member is "" for the type itself.
type MetadataKey struct {
	Type   reflect.Type
	Member string
}

func (k MetadataKey) String() string {
	if k.Member == "" {
		return typeName(k.Type)
	}
	return typeName(k.Type) + "." + k.Member
}

// Constraint is one validation rule, e.g. {Name: "maxLength", Value: "20"}
type Constraint struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (c Constraint) String() string {
	if c.Value == "" {
		return c.Name
	}
	return c.Name + "=" + c.Value
}

// ModelMetadata is the merged static metadata of a type or struct member
type ModelMetadata struct {
	OwnerType             reflect.Type  `json:"-" yaml:"-"`
	MemberName            string        `json:"member,omitempty" yaml:"member,omitempty"`
	ModelType             reflect.Type  `json:"-" yaml:"-"`
	IsRequired            bool          `json:"required" yaml:"required"`
	IsReadOnly            bool          `json:"readOnly" yaml:"readOnly"`
	DisplayName           string        `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	BindingSource         BindingSource `json:"bindingSource,omitempty" yaml:"bindingSource,omitempty"`
	BinderModelName       string        `json:"binderModelName,omitempty" yaml:"binderModelName,omitempty"`
	DefaultValue          string        `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	ValidationConstraints []Constraint  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	IsSimpleType          bool          `json:"simpleType" yaml:"simpleType"`
}

// Key returns the cache key of the metadata
func (m ModelMetadata) Key() MetadataKey {
	return MetadataKey{Type: m.OwnerType, Member: m.MemberName}
}

// Clone returns a copy that shares no slices with m
func (m ModelMetadata) Clone() ModelMetadata {
	m.ValidationConstraints = slices.Clone(m.ValidationConstraints)
	return m
}

// BindingSourceProvider is implemented by types that declare where they bind from
type BindingSourceProvider interface {
	BindingSource() BindingSource
}

// DisplayNamer is implemented by types that declare their own display name
type DisplayNamer interface {
	DisplayName() string
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

	knownSimpleTypes = map[reflect.Type]bool{
		reflect.TypeOf(time.Time{}):      true,
		reflect.TypeOf(time.Duration(0)): true,
		reflect.TypeOf(uuid.UUID{}):      true,
	}
)

// IsSimpleType reports whether values of t convert from a single string:
// primitives, time.Time, time.Duration, uuid.UUID, TextUnmarshalers, and
// pointers, slices or arrays of those.
func IsSimpleType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if knownSimpleTypes[t] {
		return true
	}
	if t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return IsSimpleType(t.Elem())
	}
	return false
}

// IsNullable reports whether the zero value of t can stand for "absent"
func IsNullable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
