package annotations

import (
	"fmt"
	"sort"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// SchemaValidator defines the interface for validating annotations against their schemas
type SchemaValidator interface {
	// Validate annotation against its schema
	Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// ApplyDefaults applies default values for missing optional parameters
	ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// TransformParameters transforms parameter values to correct types
	TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error
}

type validator struct{}

// NewValidator creates a new schema validator
func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate checks required parameters, unknown parameters, value types and
// custom validators. All problems are collected before returning.
func (v *validator) Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	var errs *apierrors.MultipleErrors

	for _, paramName := range sortedKeys(schema.Parameters) {
		paramSpec := schema.Parameters[paramName]
		if !paramSpec.Required {
			continue
		}
		if _, exists := annotation.Parameters[paramName]; !exists {
			apierrors.AddToMultiple(&errs, annotationValidationError(annotation, paramName,
				fmt.Sprintf("required parameter of type %s", paramSpec.Type), "missing",
				missingParameterHint(schema, paramName)))
		}
	}

	for _, paramName := range sortedKeys(annotation.Parameters) {
		paramValue := annotation.Parameters[paramName]
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			apierrors.AddToMultiple(&errs, annotationValidationError(annotation, paramName,
				"known parameter", fmt.Sprintf("unknown parameter '%s'", paramName),
				fmt.Sprintf("Remove -%s or check parameter name spelling", paramName)))
			continue
		}

		if !isCorrectType(paramValue, paramSpec.Type) {
			apierrors.AddToMultiple(&errs, annotationValidationError(annotation, paramName,
				paramSpec.Type.String(), fmt.Sprintf("%T", paramValue), ""))
			continue
		}

		if paramSpec.Validator != nil {
			if err := paramSpec.Validator(paramValue); err != nil {
				apierrors.AddToMultiple(&errs, annotationValidationError(annotation, paramName,
					"valid value", fmt.Sprintf("%v", paramValue), err.Error()).WithValue(paramValue))
			}
		}
	}

	for _, customValidator := range schema.Validators {
		if err := customValidator(annotation); err != nil {
			apierrors.AddToMultiple(&errs, apierrors.NewSchemaError(annotation.Type.String(), err.Error()).
				WithLocation(annotation.Location).
				WithSuggestion("Check annotation parameters and their combinations"))
		}
	}

	return errs.ErrorOrNil()
}

// ApplyDefaults applies default values for missing optional parameters
func (v *validator) ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	if annotation.Parameters == nil {
		annotation.Parameters = make(map[string]interface{})
	}

	for paramName, paramSpec := range schema.Parameters {
		if _, exists := annotation.Parameters[paramName]; !exists && paramSpec.DefaultValue != nil {
			annotation.Parameters[paramName] = paramSpec.DefaultValue
		}
	}

	return nil
}

// TransformParameters converts raw string values to the types their specs declare.
// Unknown parameters are left untouched for Validate to report.
func (v *validator) TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	for paramName, paramValue := range annotation.Parameters {
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			continue
		}

		transformed, err := transformParameterValue(paramValue, paramSpec.Type)
		if err != nil {
			return annotationValidationError(annotation, paramName,
				fmt.Sprintf("value convertible to %s", paramSpec.Type),
				fmt.Sprintf("%v (%T)", paramValue, paramValue),
				fmt.Sprintf("Ensure the value can be converted to %s", paramSpec.Type))
		}

		annotation.Parameters[paramName] = transformed
	}

	return nil
}

func transformParameterValue(value interface{}, targetType ParameterType) (interface{}, error) {
	if isCorrectType(value, targetType) {
		return value, nil
	}

	switch targetType {
	case StringType:
		return ConvertToString(value)
	case BoolType:
		return ConvertToBool(value)
	case IntType:
		return ConvertToInt(value)
	case StringSliceType:
		return ConvertToStringSlice(value)
	default:
		return nil, fmt.Errorf("unsupported target type: %d", targetType)
	}
}

func isCorrectType(value interface{}, targetType ParameterType) bool {
	var ok bool
	switch targetType {
	case StringType:
		_, ok = value.(string)
	case BoolType:
		_, ok = value.(bool)
	case IntType:
		_, ok = value.(int)
	case StringSliceType:
		_, ok = value.([]string)
	}
	return ok
}

func annotationValidationError(annotation *ParsedAnnotation, param, expected, actual, hint string) *apierrors.ValidationError {
	return apierrors.NewValidationError(param, expected, actual).
		WithLocation(annotation.Location).
		WithContext("annotation_type", annotation.Type.String()).
		WithSuggestion(hint)
}

func missingParameterHint(schema AnnotationSchema, paramName string) string {
	for i, name := range schema.Positional {
		if name == paramName {
			return fmt.Sprintf("Pass %s as positional argument %d, e.g. %s", paramName, i+1, firstExample(schema))
		}
	}
	return fmt.Sprintf("Add -%s=<value> to the annotation", paramName)
}

func firstExample(schema AnnotationSchema) string {
	if len(schema.Examples) == 0 {
		return "//axon::" + schema.Type.String()
	}
	return schema.Examples[0]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
