package apiexplorer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// ErrFrozen is matched by every FrozenStateError
var ErrFrozen = errors.New("collection is frozen")

// MetadataResolutionError reports a detail provider failure for a (type, member) key
type MetadataResolutionError struct {
	*apierrors.BaseError
	Provider  string
	OwnerType reflect.Type
	Member    string
}

// NewMetadataResolutionError wraps cause, the failure of provider for key
func NewMetadataResolutionError(provider string, key MetadataKey, cause error) *MetadataResolutionError {
	base := apierrors.Wrapf(apierrors.MetadataErrorCode, cause,
		"metadata provider %q failed for %s", provider, key).
		WithContext("provider", provider).
		WithContext("type", typeName(key.Type)).
		WithContext("member", key.Member)
	return &MetadataResolutionError{BaseError: base, Provider: provider, OwnerType: key.Type, Member: key.Member}
}

// AmbiguousBindingError reports more than one body parameter on an operation
type AmbiguousBindingError struct {
	*apierrors.BaseError
	Method     string
	Path       string
	Parameters []string
}

// NewAmbiguousBindingError reports params all bound to the body of method path
func NewAmbiguousBindingError(method, path string, params []string) *AmbiguousBindingError {
	base := apierrors.Newf(apierrors.BindingErrorCode,
		"%s %s binds more than one parameter to the request body: %s",
		orAny(method), path, strings.Join(params, ", ")).
		WithContext("parameters", params).
		WithSuggestion("bind all but one of the parameters to another source or wrap them in a single body type")
	return &AmbiguousBindingError{BaseError: base, Method: method, Path: path, Parameters: params}
}

// StructuralRouteError reports a mismatch between a route template and its parameters
type StructuralRouteError struct {
	*apierrors.BaseError
	Template  string
	Parameter string
}

// NewStructuralRouteError reports a problem with param in template
func NewStructuralRouteError(template, param, format string, args ...interface{}) *StructuralRouteError {
	base := apierrors.Newf(apierrors.RouteErrorCode, "route %q: %s", template, fmt.Sprintf(format, args...)).
		WithContext("template", template).
		WithContext("parameter", param)
	return &StructuralRouteError{BaseError: base, Template: template, Parameter: param}
}

// UnresolvedMethodError reports an operation with no HTTP method from any source
type UnresolvedMethodError struct {
	*apierrors.BaseError
	Handler string
}

// NewUnresolvedMethodError reports that handler has no resolvable method
func NewUnresolvedMethodError(handler, path string) *UnresolvedMethodError {
	base := apierrors.Newf(apierrors.MethodErrorCode, "no HTTP method resolved for %s (%s)", handler, path).
		WithSuggestion("add an HTTPMethod attribute or pass a method constraint with the declaration")
	return &UnresolvedMethodError{BaseError: base, Handler: handler}
}

// NoInputFormatterWarning reports a body type no registered input formatter can read
type NoInputFormatterWarning struct {
	*apierrors.BaseError
	BodyType reflect.Type
}

// NewNoInputFormatterWarning reports that nothing can read bodyType
func NewNoInputFormatterWarning(bodyType reflect.Type) *NoInputFormatterWarning {
	base := apierrors.Newf(apierrors.FormatterErrorCode, "no input formatter supports body type %s", TypeName(bodyType))
	return &NoInputFormatterWarning{BaseError: base, BodyType: bodyType}
}

// FrozenStateError reports a mutation attempted after finalization
type FrozenStateError struct {
	*apierrors.BaseError
	Operation string
}

// NewFrozenStateError reports that op was attempted on a finalized pipeline
func NewFrozenStateError(op string) *FrozenStateError {
	base := apierrors.Wrapf(apierrors.StateErrorCode, ErrFrozen, "cannot %s after finalization", op)
	return &FrozenStateError{BaseError: base, Operation: op}
}

func orAny(method string) string {
	if method == "" {
		return "*"
	}
	return method
}
