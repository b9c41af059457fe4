package annotations

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Same(t, registry, DefaultRegistry())

	types := registry.ListTypes()
	assert.Len(t, types, len(GetBuiltinSchemas()))
	assert.Equal(t, RouteAnnotation, types[0])
	assert.Equal(t, ExplorerAnnotation, types[len(types)-1])
}

func TestRegister(t *testing.T) {
	schema := AnnotationSchema{
		Type:       DisplayAnnotation,
		Targets:    ParameterTarget,
		Positional: []string{"name"},
		Parameters: map[string]ParameterSpec{"name": {Type: StringType, Required: true}},
	}

	t.Run("registers once", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(DisplayAnnotation, schema))
		assert.True(t, registry.IsRegistered(DisplayAnnotation))

		got, err := registry.GetSchema(DisplayAnnotation)
		require.NoError(t, err)
		assert.Equal(t, []string{"name"}, got.Positional)

		err = registry.Register(DisplayAnnotation, schema)
		var regErr *apierrors.RegistrationError
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, "display", regErr.ComponentName)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewRegistry().GetSchema(ResponseAnnotation)
		assert.Error(t, err)
	})

	invalid := []struct {
		name   string
		mutate func(s *AnnotationSchema)
		typ    AnnotationType
	}{
		{"type mismatch", func(s *AnnotationSchema) {}, RouteAnnotation},
		{"no targets", func(s *AnnotationSchema) { s.Targets = 0 }, DisplayAnnotation},
		{"positional without spec", func(s *AnnotationSchema) { s.Positional = []string{"label"} }, DisplayAnnotation},
		{"bad default", func(s *AnnotationSchema) {
			s.Parameters = map[string]ParameterSpec{"name": {Type: IntType, DefaultValue: "ten"}}
		}, DisplayAnnotation},
		{"bad parameter type", func(s *AnnotationSchema) {
			s.Parameters = map[string]ParameterSpec{"name": {Type: ParameterType(42)}}
		}, DisplayAnnotation},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			s := schema
			s.Parameters = map[string]ParameterSpec{"name": schema.Parameters["name"]}
			tt.mutate(&s)

			registry := NewRegistry()
			err := registry.Register(tt.typ, s)
			var regErr *apierrors.RegistrationError
			require.True(t, errors.As(err, &regErr), "got %v", err)
			assert.False(t, registry.IsRegistered(tt.typ))
		})
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	schemas := GetBuiltinSchemas()

	var wg sync.WaitGroup
	for _, schema := range schemas {
		wg.Add(1)
		go func(s AnnotationSchema) {
			defer wg.Done()
			assert.NoError(t, registry.Register(s.Type, s))
			assert.True(t, registry.IsRegistered(s.Type))
		}(schema)
	}
	wg.Wait()

	assert.Len(t, registry.ListTypes(), len(schemas))
}

func TestAnnotationType_RoundTrip(t *testing.T) {
	for _, schema := range GetBuiltinSchemas() {
		parsed, err := ParseAnnotationType(schema.Type.String())
		require.NoError(t, err)
		assert.Equal(t, schema.Type, parsed)
	}

	_, err := ParseAnnotationType("core")
	assert.Error(t, err)
	assert.Equal(t, "unknown", UnknownAnnotation.String())
}

func TestTarget_String(t *testing.T) {
	assert.Equal(t, "action|controller", (ActionTarget | OwnerTarget).String())
	assert.Equal(t, "parameter", ParameterTarget.String())
	assert.Equal(t, "none", Target(0).String())
	assert.True(t, (ActionTarget | OwnerTarget).Allows(OwnerTarget))
	assert.False(t, ParameterTarget.Allows(ActionTarget))
}
