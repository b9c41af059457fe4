package annotations

import (
	"fmt"
	"sync"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/utils"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation type with its schema
	Register(annotationType AnnotationType, schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation type
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns all registered annotation types in ascending order
	ListTypes() []AnnotationType

	// IsRegistered checks if an annotation type is registered
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	schemas *utils.Registry[AnnotationType, AnnotationSchema]
}

// NewRegistry creates an empty annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: utils.NewRegistry[AnnotationType, AnnotationSchema]("annotation schemas"),
	}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry holding the built-in schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds a new annotation type with its schema to the registry
func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	if schema.Type != annotationType {
		return apierrors.NewRegistrationError("annotation", annotationType.String(),
			fmt.Sprintf("schema type %s does not match", schema.Type))
	}

	if err := validateSchema(schema); err != nil {
		return apierrors.NewRegistrationError("annotation", annotationType.String(), err.Error())
	}

	if err := r.schemas.RegisterUnique(annotationType, schema); err != nil {
		return apierrors.NewRegistrationError("annotation", annotationType.String(), "already registered")
	}
	return nil
}

// GetSchema retrieves the schema for an annotation type
func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	schema, exists := r.schemas.Get(annotationType)
	if !exists {
		return AnnotationSchema{}, fmt.Errorf("annotation type %s is not registered", annotationType)
	}
	return schema, nil
}

// ListTypes returns all registered annotation types
func (r *registry) ListTypes() []AnnotationType {
	return r.schemas.List()
}

// IsRegistered checks if an annotation type is registered
func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	return r.schemas.Has(annotationType)
}

// validateSchema performs basic validation on a schema
func validateSchema(schema AnnotationSchema) error {
	if schema.Targets == 0 {
		return fmt.Errorf("schema declares no targets")
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > StringSliceType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}

		if paramSpec.DefaultValue != nil {
			if err := validateDefaultValue(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}

	for _, name := range schema.Positional {
		if _, ok := schema.Parameters[name]; !ok {
			return fmt.Errorf("positional parameter %s has no specification", name)
		}
	}

	return nil
}

// validateDefaultValue checks if the default value matches the parameter type
func validateDefaultValue(paramName string, paramType ParameterType, defaultValue interface{}) error {
	ok := false
	switch paramType {
	case StringType:
		_, ok = defaultValue.(string)
	case BoolType:
		_, ok = defaultValue.(bool)
	case IntType:
		_, ok = defaultValue.(int)
	case StringSliceType:
		_, ok = defaultValue.([]string)
	}
	if !ok {
		return fmt.Errorf("default value for %s parameter %s must be %s, got %T", paramType, paramName, paramType, defaultValue)
	}
	return nil
}
