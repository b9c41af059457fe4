package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string      // field that failed validation
	Value    interface{} // the value that failed validation
	Expected string      // what was expected
	Actual   string      // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// WithValue records the offending value
func (e *ValidationError) WithValue(value interface{}) *ValidationError {
	e.Value = value
	return e
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithContext adds context data to the error
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	e.BaseError.WithContext(key, value)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	if suggestion != "" {
		e.BaseError.WithSuggestion(suggestion)
	}
	return e
}

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	*BaseError
	Token string // the token that caused the error
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithCause adds an underlying error cause
func (e *SyntaxError) WithCause(cause error) *SyntaxError {
	e.BaseError.WithCause(cause)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	if suggestion != "" {
		e.BaseError.WithSuggestion(suggestion)
	}
	return e
}

// RegistrationError represents an error during component registration
type RegistrationError struct {
	*BaseError
	ComponentType string // type of component being registered
	ComponentName string // name of the component
	Reason        string // reason for registration failure
}

// NewRegistrationError creates a new registration error
func NewRegistrationError(componentType, componentName, reason string) *RegistrationError {
	message := fmt.Sprintf("failed to register %s '%s': %s", componentType, componentName, reason)

	return &RegistrationError{
		BaseError:     New(RegistrationErrorCode, message),
		ComponentType: componentType,
		ComponentName: componentName,
		Reason:        reason,
	}
}

// SchemaError represents a schema-related error
type SchemaError struct {
	*BaseError
	SchemaName string // name of the schema
}

// NewSchemaError creates a schema error for the named schema
func NewSchemaError(schemaName, message string) *SchemaError {
	return &SchemaError{
		BaseError:  New(SchemaErrorCode, fmt.Sprintf("%s: %s", schemaName, message)),
		SchemaName: schemaName,
	}
}

// WithLocation adds location information to the error
func (e *SchemaError) WithLocation(loc SourceLocation) *SchemaError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SchemaError) WithSuggestion(suggestion string) *SchemaError {
	if suggestion != "" {
		e.BaseError.WithSuggestion(suggestion)
	}
	return e
}
