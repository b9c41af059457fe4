package annotations

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var httpMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// ValidateHTTPMethod validates HTTP method names
func ValidateHTTPMethod(v interface{}) error {
	method := strings.ToUpper(v.(string))
	for _, valid := range httpMethods {
		if method == valid {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s, got '%s'", strings.Join(httpMethods, ", "), method)
}

// ValidateStatusCode validates an HTTP status code
func ValidateStatusCode(v interface{}) error {
	code := v.(int)
	if code < 100 || code > 599 {
		return fmt.Errorf("must be between 100 and 599, got %d", code)
	}
	return nil
}

// ValidateMediaTypes validates a list of media types
func ValidateMediaTypes(v interface{}) error {
	types := v.([]string)
	if len(types) == 0 {
		return fmt.Errorf("at least one media type is required")
	}
	for _, t := range types {
		if _, _, err := mime.ParseMediaType(t); err != nil || !strings.Contains(t, "/") {
			return fmt.Errorf("invalid media type '%s'", t)
		}
	}
	return nil
}

// ValidateNotEmpty rejects empty strings
func ValidateNotEmpty(v interface{}) error {
	if strings.TrimSpace(v.(string)) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// HTTPMethodParameterSpec returns a standard HTTP method parameter specification
func HTTPMethodParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    true,
		Description: "HTTP method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, ...)",
		Validator:   ValidateHTTPMethod,
	}
}

// TemplateParameterSpec returns a route template parameter specification
func TemplateParameterSpec(required bool) ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    required,
		Description: "Route template (e.g., api/[controller], {id:int})",
	}
}

// NameParameterSpec returns a standard Name parameter specification
func NameParameterSpec(description string) ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    false,
		Description: description,
		Validator:   ValidateNotEmpty,
	}
}

// MediaTypesParameterSpec returns a comma-separated media type list specification
func MediaTypesParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringSliceType,
		Required:    true,
		Description: "Comma-separated media types (e.g., application/json,text/xml)",
		Validator:   ValidateMediaTypes,
	}
}
