package apiexplorer

import (
	"reflect"
)

// Attribute is a piece of declarative metadata attached to a handler, its owner
// (controller) or one of its parameters.
type Attribute interface {
	AttributeName() string
}

// BindingAttribute is an attribute that names a binding source explicitly
type BindingAttribute interface {
	Attribute
	BindingSource() BindingSource
	// ModelName returns the name the value is bound under, or "" for the parameter name
	ModelName() string
}

// FromPath binds a parameter to a route placeholder
type FromPath struct{ Name string }

// FromQuery binds a parameter to a query string value
type FromQuery struct{ Name string }

// FromHeader binds a parameter to a request header
type FromHeader struct{ Name string }

// FromForm binds a parameter to a form field
type FromForm struct{ Name string }

// FromBody binds a parameter to the request body
type FromBody struct{}

// FromServices marks a parameter as injected by the host
type FromServices struct{}

// FromCustom binds a parameter through a host-specific binder
type FromCustom struct{ Name string }

func (FromPath) AttributeName() string     { return "FromPath" }
func (FromQuery) AttributeName() string    { return "FromQuery" }
func (FromHeader) AttributeName() string   { return "FromHeader" }
func (FromForm) AttributeName() string     { return "FromForm" }
func (FromBody) AttributeName() string     { return "FromBody" }
func (FromServices) AttributeName() string { return "FromServices" }
func (FromCustom) AttributeName() string   { return "FromCustom" }

func (FromPath) BindingSource() BindingSource     { return SourcePath }
func (FromQuery) BindingSource() BindingSource    { return SourceQuery }
func (FromHeader) BindingSource() BindingSource   { return SourceHeader }
func (FromForm) BindingSource() BindingSource     { return SourceForm }
func (FromBody) BindingSource() BindingSource     { return SourceBody }
func (FromServices) BindingSource() BindingSource { return SourceService }
func (FromCustom) BindingSource() BindingSource   { return SourceCustom }

func (a FromPath) ModelName() string   { return a.Name }
func (a FromQuery) ModelName() string  { return a.Name }
func (a FromHeader) ModelName() string { return a.Name }
func (a FromForm) ModelName() string   { return a.Name }
func (FromBody) ModelName() string     { return "" }
func (FromServices) ModelName() string { return "" }
func (a FromCustom) ModelName() string { return a.Name }

// Required marks a parameter as required
type Required struct{}

func (Required) AttributeName() string { return "Required" }

// DisplayName overrides the display name of a parameter
type DisplayName struct{ Name string }

func (DisplayName) AttributeName() string { return "DisplayName" }

// DefaultValue declares the value used when the request omits the parameter
type DefaultValue struct{ Value any }

func (DefaultValue) AttributeName() string { return "DefaultValue" }

// HTTPMethod constrains an action (or every action of a controller) to a verb.
// Template, when set, replaces the declaration's route template.
type HTTPMethod struct {
	Method   string
	Template string
	Name     string
}

func (HTTPMethod) AttributeName() string { return "HttpMethod" }

// Route supplies a route template. On a controller it prefixes every action template.
type Route struct{ Template string }

func (Route) AttributeName() string { return "Route" }

// ProducesResponseType declares a response status code and payload type.
// A nil Type means the response has no body.
type ProducesResponseType struct {
	StatusCode int
	Type       reflect.Type
}

func (ProducesResponseType) AttributeName() string { return "ProducesResponseType" }

// Consumes restricts the request media types of an operation
type Consumes struct{ MediaTypes []string }

func (Consumes) AttributeName() string { return "Consumes" }

// Produces restricts the response media types of an operation
type Produces struct{ MediaTypes []string }

func (Produces) AttributeName() string { return "Produces" }

// APIExplorerSettings controls the visibility and group of an operation
type APIExplorerSettings struct {
	GroupName string
	IgnoreAPI bool
}

func (APIExplorerSettings) AttributeName() string { return "ApiExplorerSettings" }

// FindAttribute returns the first attribute of type T in attrs
func FindAttribute[T Attribute](attrs []Attribute) (T, bool) {
	for _, attr := range attrs {
		if typed, ok := attr.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// FindAttributes returns every attribute of type T in attrs, in order
func FindAttributes[T Attribute](attrs []Attribute) []T {
	var found []T
	for _, attr := range attrs {
		if typed, ok := attr.(T); ok {
			found = append(found, typed)
		}
	}
	return found
}

// FindBindingAttribute returns the first explicit binding attribute in attrs
func FindBindingAttribute(attrs []Attribute) (BindingAttribute, bool) {
	return FindAttribute[BindingAttribute](attrs)
}
