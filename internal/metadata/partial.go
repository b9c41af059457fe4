package metadata

import (
	"reflect"
	"slices"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Member is the static information a detail provider inspects
type Member struct {
	Key apiexplorer.MetadataKey
	// OwnerType is the key type with pointers removed
	OwnerType reflect.Type
	// ModelType is the member's type, or the owner type itself for type-level metadata
	ModelType reflect.Type
	// Field is nil for type-level metadata
	Field *reflect.StructField
}

// IsType reports whether the member is the type itself rather than a field
func (m Member) IsType() bool {
	return m.Field == nil
}

// Tag returns the struct tag value for key, or "" for type-level members
func (m Member) Tag(key string) string {
	if m.Field == nil {
		return ""
	}
	return m.Field.Tag.Get(key)
}

// LookupTag is Tag with a presence flag
func (m Member) LookupTag(key string) (string, bool) {
	if m.Field == nil {
		return "", false
	}
	return m.Field.Tag.Lookup(key)
}

// Partial is a metadata record under construction. A nil field is unset.
type Partial struct {
	IsRequired      *bool
	IsReadOnly      *bool
	DisplayName     *string
	BindingSource   *apiexplorer.BindingSource
	BinderModelName *string
	DefaultValue    *string
	Constraints     []apiexplorer.Constraint
}

// Merge returns p with every unset field taken from next. Fields already set in p
// are never overwritten, so the earliest provider to set a field wins.
func (p Partial) Merge(next Partial) Partial {
	out := p
	out.IsRequired = first(p.IsRequired, next.IsRequired)
	out.IsReadOnly = first(p.IsReadOnly, next.IsReadOnly)
	out.DisplayName = first(p.DisplayName, next.DisplayName)
	out.BindingSource = first(p.BindingSource, next.BindingSource)
	out.BinderModelName = first(p.BinderModelName, next.BinderModelName)
	out.DefaultValue = first(p.DefaultValue, next.DefaultValue)
	if p.Constraints == nil && next.Constraints != nil {
		out.Constraints = slices.Clone(next.Constraints)
	}
	return out
}

// Clone returns a copy of p that shares no pointers or backing arrays with it
func (p Partial) Clone() Partial {
	return Partial{}.Merge(p)
}

func first[T any](current, next *T) *T {
	if current != nil {
		return current
	}
	if next == nil {
		return nil
	}
	v := *next
	return &v
}

// Ptr returns a pointer to v, for filling Partial fields
func Ptr[T any](v T) *T {
	return &v
}
