package annotations

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// AnnotationType represents the kind of an annotation, the word after "axon::"
type AnnotationType int

const (
	UnknownAnnotation AnnotationType = iota
	RouteAnnotation
	HTTPAnnotation
	FromPathAnnotation
	FromQueryAnnotation
	FromHeaderAnnotation
	FromFormAnnotation
	FromBodyAnnotation
	FromServicesAnnotation
	FromCustomAnnotation
	RequiredAnnotation
	DisplayAnnotation
	DefaultAnnotation
	ProducesAnnotation
	ConsumesAnnotation
	ResponseAnnotation
	ExplorerAnnotation
)

var annotationNames = map[AnnotationType]string{
	RouteAnnotation:        "route",
	HTTPAnnotation:         "http",
	FromPathAnnotation:     "from_path",
	FromQueryAnnotation:    "from_query",
	FromHeaderAnnotation:   "from_header",
	FromFormAnnotation:     "from_form",
	FromBodyAnnotation:     "from_body",
	FromServicesAnnotation: "from_services",
	FromCustomAnnotation:   "from_custom",
	RequiredAnnotation:     "required",
	DisplayAnnotation:      "display",
	DefaultAnnotation:      "default",
	ProducesAnnotation:     "produces",
	ConsumesAnnotation:     "consumes",
	ResponseAnnotation:     "response",
	ExplorerAnnotation:     "explorer",
}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	if name, ok := annotationNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAnnotationType converts a kind name to an AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	for t, name := range annotationNames {
		if name == s {
			return t, nil
		}
	}
	return UnknownAnnotation, fmt.Errorf("unknown annotation type: %s", s)
}

// Target is a set of places an annotation may be attached to
type Target int

const (
	ActionTarget Target = 1 << iota
	OwnerTarget
	ParameterTarget
)

// Allows reports whether t includes other
func (t Target) Allows(other Target) bool {
	return t&other != 0
}

// String returns the string representation of the target set
func (t Target) String() string {
	var names []string
	if t.Allows(ActionTarget) {
		names = append(names, "action")
	}
	if t.Allows(OwnerTarget) {
		names = append(names, "controller")
	}
	if t.Allows(ParameterTarget) {
		names = append(names, "parameter")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// SourceLocation represents the location of an annotation in a manifest or source file
type SourceLocation = apierrors.SourceLocation

// ParsedAnnotation represents a fully parsed annotation with type-safe parameters
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Parameters map[string]interface{} // Typed parameters, positional ones under their schema names
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAnnotation) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := p.Parameters[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Targets     Target                   // Where the annotation may be attached
	Positional  []string                 // Parameter names filled by positional arguments, in order
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// ConvertToString converts any value to a string
func ConvertToString(value interface{}) (string, error) {
	if strValue, ok := value.(string); ok {
		return strValue, nil
	}
	return fmt.Sprintf("%v", value), nil
}

// ConvertToBool converts strings and numbers to boolean
func ConvertToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBoolString(v)
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// ConvertToInt converts strings and bools to integer
func ConvertToInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid integer string: %s", v)
		}
		return n, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

// ConvertToStringSlice converts a comma-separated string to a string slice
func ConvertToStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case string:
		if v == "" {
			return []string{}, nil
		}
		return parseCommaSeparated(v), nil
	default:
		return []string{fmt.Sprintf("%v", value)}, nil
	}
}

func parseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s", s)
	}
}

// parseCommaSeparated splits on commas outside quotes and unquotes each part
func parseCommaSeparated(s string) []string {
	var parts []string
	var current strings.Builder
	var quote rune

	for _, char := range s {
		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			}
			current.WriteRune(char)
		case char == '"' || char == '\'':
			quote = char
			current.WriteRune(char)
		case char == ',':
			parts = append(parts, unquote(strings.TrimSpace(current.String())))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	return append(parts, unquote(strings.TrimSpace(current.String())))
}

// unquote removes one level of single or double quotes
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
		return s[1 : len(s)-1]
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	}
	return s
}
