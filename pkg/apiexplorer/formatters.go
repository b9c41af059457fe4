package apiexplorer

import (
	"reflect"
	"slices"
)

// InputFormatter describes a request body reader the host has registered.
// The engine never reads bodies; it only asks which types and media types apply.
type InputFormatter interface {
	MediaTypes() []string
	CanRead(t reflect.Type) bool
}

// OutputFormatter describes a response writer the host has registered
type OutputFormatter interface {
	MediaTypes() []string
	CanWrite(t reflect.Type) bool
}

// Formatters is the ordered formatter registry consulted for media types
type Formatters struct {
	Input  []InputFormatter
	Output []OutputFormatter
}

// DefaultFormatters returns the JSON input and output formatters
func DefaultFormatters() Formatters {
	return Formatters{
		Input:  []InputFormatter{JSONFormatter{}},
		Output: []OutputFormatter{JSONFormatter{}},
	}
}

// With returns a copy of f with formatter appended to the input list, the
// output list or both, depending on which interfaces it implements
func (f Formatters) With(formatter any) Formatters {
	out := Formatters{Input: slices.Clone(f.Input), Output: slices.Clone(f.Output)}
	if in, ok := formatter.(InputFormatter); ok {
		out.Input = append(out.Input, in)
	}
	if o, ok := formatter.(OutputFormatter); ok {
		out.Output = append(out.Output, o)
	}
	return out
}

// RequestMediaTypes returns the media types of every input formatter that can read t
func (f Formatters) RequestMediaTypes(t reflect.Type) []string {
	var types []string
	for _, in := range f.Input {
		if in.CanRead(t) {
			types = appendUnique(types, in.MediaTypes()...)
		}
	}
	return types
}

// ResponseMediaTypes returns the media types of every output formatter that can write t.
// A nil t (no payload) is writable by every formatter.
func (f Formatters) ResponseMediaTypes(t reflect.Type) []string {
	var types []string
	for _, out := range f.Output {
		if t == nil || out.CanWrite(t) {
			types = appendUnique(types, out.MediaTypes()...)
		}
	}
	return types
}

// JSONFormatter handles application/json payloads
type JSONFormatter struct{}

func (JSONFormatter) MediaTypes() []string {
	return []string{"application/json", "text/json"}
}

func (JSONFormatter) CanRead(t reflect.Type) bool  { return jsonEncodable(t) }
func (JSONFormatter) CanWrite(t reflect.Type) bool { return jsonEncodable(t) }

// XMLFormatter handles application/xml payloads. Maps are not representable.
type XMLFormatter struct{}

func (XMLFormatter) MediaTypes() []string {
	return []string{"application/xml", "text/xml"}
}

func (XMLFormatter) CanRead(t reflect.Type) bool  { return xmlEncodable(t) }
func (XMLFormatter) CanWrite(t reflect.Type) bool { return xmlEncodable(t) }

func jsonEncodable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return false
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return jsonEncodable(t.Elem())
	case reflect.Map:
		return jsonEncodable(t.Elem())
	}
	return true
}

func xmlEncodable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Map, reflect.Interface:
		return false
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return xmlEncodable(t.Elem())
	}
	return jsonEncodable(t)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
