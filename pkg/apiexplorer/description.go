package apiexplorer

import (
	"encoding/json"
	"errors"
	"maps"
	"reflect"
	"slices"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// Severity of a diagnostic attached to an operation
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a per-operation anomaly collected instead of aborting the build
type Diagnostic struct {
	Severity  Severity
	Operation string
	Err       error
}

// Code returns the error code name of the diagnostic, e.g. "AmbiguousBindingError"
func (d Diagnostic) Code() string {
	var explorerErr apierrors.ExplorerError
	if errors.As(d.Err, &explorerErr) {
		return explorerErr.ErrorCode().String()
	}
	return apierrors.UnknownErrorCode.String()
}

func (d Diagnostic) String() string {
	msg := "<nil>"
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return d.Severity.String() + " " + d.Operation + ": " + msg
}

type diagnosticView struct {
	Severity  Severity `json:"severity" yaml:"severity"`
	Code      string   `json:"code" yaml:"code"`
	Operation string   `json:"operation" yaml:"operation"`
	Message   string   `json:"message" yaml:"message"`
}

func (d Diagnostic) view() diagnosticView {
	v := diagnosticView{Severity: d.Severity, Code: d.Code(), Operation: d.Operation}
	if d.Err != nil {
		v.Message = d.Err.Error()
	}
	return v
}

// MarshalJSON encodes the diagnostic with its error message
func (d Diagnostic) MarshalJSON() ([]byte, error) { return json.Marshal(d.view()) }

// MarshalYAML encodes the diagnostic with its error message
func (d Diagnostic) MarshalYAML() (interface{}, error) { return d.view(), nil }

// ParameterDescriptor describes one request parameter of an operation
type ParameterDescriptor struct {
	Name         string
	Type         reflect.Type
	Source       BindingSource
	Required     bool
	DefaultValue any
	// Constraints are the route constraint tokens of the matching placeholder
	Constraints []string
	Metadata    ModelMetadata
}

type parameterView struct {
	Name         string        `json:"name" yaml:"name"`
	Type         string        `json:"type" yaml:"type"`
	Source       BindingSource `json:"source" yaml:"source"`
	Required     bool          `json:"required" yaml:"required"`
	DefaultValue any           `json:"default,omitempty" yaml:"default,omitempty"`
	Constraints  []string      `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Metadata     ModelMetadata `json:"metadata" yaml:"metadata"`
}

func (p ParameterDescriptor) view() parameterView {
	return parameterView{
		Name:         p.Name,
		Type:         TypeName(p.Type),
		Source:       p.Source,
		Required:     p.Required,
		DefaultValue: p.DefaultValue,
		Constraints:  p.Constraints,
		Metadata:     p.Metadata,
	}
}

// MarshalJSON encodes the parameter with its type name
func (p ParameterDescriptor) MarshalJSON() ([]byte, error) { return json.Marshal(p.view()) }

// MarshalYAML encodes the parameter with its type name
func (p ParameterDescriptor) MarshalYAML() (interface{}, error) { return p.view(), nil }

// Clone returns a deep copy of p
func (p ParameterDescriptor) Clone() ParameterDescriptor {
	p.Constraints = slices.Clone(p.Constraints)
	p.Metadata = p.Metadata.Clone()
	return p
}

// ResponseType is one declared (status, payload) outcome of an operation
type ResponseType struct {
	StatusCode int
	Type       reflect.Type
	MediaTypes []string
}

type responseView struct {
	StatusCode int      `json:"status" yaml:"status"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	MediaTypes []string `json:"mediaTypes,omitempty" yaml:"mediaTypes,omitempty"`
}

func (r ResponseType) view() responseView {
	v := responseView{StatusCode: r.StatusCode, MediaTypes: r.MediaTypes}
	if r.Type != nil {
		v.Type = TypeName(r.Type)
	}
	return v
}

// MarshalJSON encodes the response with its type name
func (r ResponseType) MarshalJSON() ([]byte, error) { return json.Marshal(r.view()) }

// MarshalYAML encodes the response with its type name
func (r ResponseType) MarshalYAML() (interface{}, error) { return r.view(), nil }

// OperationDescription is the assembled model of one operation
type OperationDescription struct {
	GroupName                   string
	HTTPMethod                  string
	RelativePath                string
	OperationID                 string
	HandlerName                 string
	Parameters                  []ParameterDescriptor
	RequestBodyType             reflect.Type
	ResponseTypes               []ResponseType
	SupportedRequestMediaTypes  []string
	SupportedResponseMediaTypes []string
	RouteValues                 map[string]string
	Diagnostics                 []Diagnostic
	// Declaration is the declaration the operation was built from; it is not serialized
	Declaration *OperationDeclaration
}

// Key returns "METHOD /relative/path", used to identify the operation in diagnostics
func (d *OperationDescription) Key() string {
	method := d.HTTPMethod
	if method == "" {
		method = "*"
	}
	return method + " /" + d.RelativePath
}

// HasErrors reports whether any error-level diagnostic is attached
func (d *OperationDescription) HasErrors() bool {
	for _, diag := range d.Diagnostics {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AddDiagnostic attaches err to the operation
func (d *OperationDescription) AddDiagnostic(severity Severity, err error) {
	d.Diagnostics = append(d.Diagnostics, Diagnostic{Severity: severity, Operation: d.Key(), Err: err})
}

// Parameter returns the named parameter
func (d *OperationDescription) Parameter(name string) (ParameterDescriptor, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterDescriptor{}, false
}

// Clone returns a deep copy of d
func (d *OperationDescription) Clone() *OperationDescription {
	c := *d
	c.Parameters = make([]ParameterDescriptor, len(d.Parameters))
	for i, p := range d.Parameters {
		c.Parameters[i] = p.Clone()
	}
	c.ResponseTypes = make([]ResponseType, len(d.ResponseTypes))
	for i, r := range d.ResponseTypes {
		r.MediaTypes = slices.Clone(r.MediaTypes)
		c.ResponseTypes[i] = r
	}
	c.SupportedRequestMediaTypes = slices.Clone(d.SupportedRequestMediaTypes)
	c.SupportedResponseMediaTypes = slices.Clone(d.SupportedResponseMediaTypes)
	c.RouteValues = maps.Clone(d.RouteValues)
	c.Diagnostics = slices.Clone(d.Diagnostics)
	return &c
}

type operationView struct {
	GroupName                   string                `json:"group,omitempty" yaml:"group,omitempty"`
	HTTPMethod                  string                `json:"method" yaml:"method"`
	RelativePath                string                `json:"path" yaml:"path"`
	OperationID                 string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	HandlerName                 string                `json:"handler,omitempty" yaml:"handler,omitempty"`
	Parameters                  []ParameterDescriptor `json:"parameters" yaml:"parameters"`
	RequestBodyType             string                `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	ResponseTypes               []ResponseType        `json:"responses" yaml:"responses"`
	SupportedRequestMediaTypes  []string              `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	SupportedResponseMediaTypes []string              `json:"produces,omitempty" yaml:"produces,omitempty"`
	RouteValues                 map[string]string     `json:"routeValues,omitempty" yaml:"routeValues,omitempty"`
	Diagnostics                 []Diagnostic          `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func (d *OperationDescription) view() operationView {
	v := operationView{
		GroupName:                   d.GroupName,
		HTTPMethod:                  d.HTTPMethod,
		RelativePath:                d.RelativePath,
		OperationID:                 d.OperationID,
		HandlerName:                 d.HandlerName,
		Parameters:                  d.Parameters,
		ResponseTypes:               d.ResponseTypes,
		SupportedRequestMediaTypes:  d.SupportedRequestMediaTypes,
		SupportedResponseMediaTypes: d.SupportedResponseMediaTypes,
		RouteValues:                 d.RouteValues,
		Diagnostics:                 d.Diagnostics,
	}
	if d.RequestBodyType != nil {
		v.RequestBodyType = TypeName(d.RequestBodyType)
	}
	return v
}

// MarshalJSON encodes the operation with type names in place of reflect types
func (d *OperationDescription) MarshalJSON() ([]byte, error) { return json.Marshal(d.view()) }

// MarshalYAML encodes the operation with type names in place of reflect types
func (d *OperationDescription) MarshalYAML() (interface{}, error) { return d.view(), nil }

// TypeNamer resolves display names of synthesized types; see SetTypeNamer
type TypeNamer func(reflect.Type) (string, bool)

var typeNamer TypeNamer

// SetTypeNamer installs a hook consulted by TypeName before reflect's own name.
// It is meant for process setup, e.g. naming types built with reflect.StructOf.
func SetTypeNamer(namer TypeNamer) {
	typeNamer = namer
}

// TypeName returns the display name of t
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if typeNamer != nil {
		if name, ok := typeNamer(t); ok {
			return name
		}
	}
	return t.String()
}
