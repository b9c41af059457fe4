package metadata

import (
	"context"
	"mime/multipart"
	"reflect"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

var (
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	fileHeaderType = reflect.TypeOf((*multipart.FileHeader)(nil))
	fileType       = reflect.TypeOf((*multipart.File)(nil)).Elem()
	formType       = reflect.TypeOf((*multipart.Form)(nil))
)

// isFile reports whether t is an uploaded file: a file header, by pointer or
// value, or an open multipart.File
func isFile(t reflect.Type) bool {
	return t == fileHeaderType || t == fileHeaderType.Elem() || t == fileType
}

// builtinOverride returns the fixed binding source of well-known special types
func builtinOverride(t reflect.Type) (apiexplorer.BindingSource, bool) {
	if t == nil {
		return apiexplorer.SourceNone, false
	}
	switch {
	case t == contextType, t.Kind() != reflect.Interface && t.Implements(contextType):
		return apiexplorer.SourceService, true
	case isFile(t), t == formType, t == formType.Elem():
		return apiexplorer.SourceFormFile, true
	case t.Kind() == reflect.Slice && isFile(t.Elem()):
		return apiexplorer.SourceFormFile, true
	}
	return apiexplorer.SourceNone, false
}

// OverrideSource returns the source forced for t by the built-in overrides,
// falling back to extra. Built-ins always win.
func OverrideSource(t reflect.Type, extra map[reflect.Type]apiexplorer.BindingSource) (apiexplorer.BindingSource, bool) {
	if source, ok := builtinOverride(t); ok {
		return source, true
	}
	source, ok := extra[t]
	return source, ok
}
