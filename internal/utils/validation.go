package utils

import (
	"fmt"
	"go/token"
	"strings"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs the validators in order and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not blank
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return apierrors.NewValidationError(field, "a non-empty value", "empty")
		}
		return nil
	}
}

// IsValidGoIdentifier validates that a string is a valid Go identifier
func IsValidGoIdentifier(field string) Validator[string] {
	return func(value string) error {
		if !token.IsIdentifier(value) {
			return apierrors.NewValidationError(field, "a valid Go identifier", fmt.Sprintf("'%s'", value)).
				WithValue(value)
		}
		return nil
	}
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, allowedValue := range allowed {
			if value == allowedValue {
				return nil
			}
		}
		return apierrors.NewValidationError(field, fmt.Sprintf("one of %v", allowed), fmt.Sprintf("%v", value)).
			WithValue(value)
	}
}

// Unique validates that no two items of a slice share the same key
func Unique[T any](field string, key func(T) string) Validator[[]T] {
	return func(values []T) error {
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			k := key(v)
			if seen[k] {
				return apierrors.NewValidationError(field, "unique names", fmt.Sprintf("duplicate '%s'", k))
			}
			seen[k] = true
		}
		return nil
	}
}

// Custom validates using a custom predicate
func Custom[T any](field string, message string, validatorFunc func(T) bool) Validator[T] {
	return func(value T) error {
		if !validatorFunc(value) {
			return apierrors.NewValidationError(field, message, fmt.Sprintf("%v", value)).WithValue(value)
		}
		return nil
	}
}

// Conditional validates only if the condition is true
func Conditional[T any](condition func(T) bool, validator Validator[T]) Validator[T] {
	return func(value T) error {
		if condition(value) {
			return validator(value)
		}
		return nil
	}
}

// ValidateHTTPMethod validates that a string is an upper-case HTTP method
func ValidateHTTPMethod(field string) Validator[string] {
	return IsOneOf(field, "GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "CONNECT", "TRACE")
}
