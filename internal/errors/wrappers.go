package errors

import "fmt"

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	message := fmt.Sprintf("failed to parse %s", item)
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, message, cause),
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// ConfigurationError reports an invalid configuration value
func ConfigurationError(configType, message string) *BaseError {
	return New(ConfigurationErrorCode, fmt.Sprintf("invalid %s configuration: %s", configType, message)).
		WithContext("config_type", configType)
}

// AddToMultiple adds err to *multiple, allocating the collection on first use
func AddToMultiple(multiple **MultipleErrors, err error) {
	if err == nil {
		return
	}
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
