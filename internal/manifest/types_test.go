package manifest

import (
	"context"
	"errors"
	"mime/multipart"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

func builderFor(t *testing.T, yaml string) *typeBuilder {
	t.Helper()
	m, err := NewLoader(Options{}).Load([]byte(yaml), "types.yaml")
	require.NoError(t, err)
	return newTypeBuilder(m)
}

func TestResolve_Builtins(t *testing.T) {
	b := builderFor(t, "")

	tests := []struct {
		expr     string
		expected reflect.Type
	}{
		{"string", reflect.TypeOf("")},
		{" int64 ", reflect.TypeOf(int64(0))},
		{"[]byte", reflect.TypeOf([]byte(nil))},
		{"*bool", reflect.TypeOf((*bool)(nil))},
		{"map[string][]float32", reflect.TypeOf(map[string][]float32(nil))},
		{"uuid", reflect.TypeOf(uuid.UUID{})},
		{"time", reflect.TypeOf(time.Time{})},
		{"duration", reflect.TypeOf(time.Duration(0))},
		{"context", reflect.TypeOf((*context.Context)(nil)).Elem()},
		{"file", reflect.TypeOf((*multipart.FileHeader)(nil))},
		{"files", reflect.TypeOf([]*multipart.FileHeader(nil))},
		{"form", reflect.TypeOf((*multipart.Form)(nil))},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := b.resolve(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_DeclaredTypes(t *testing.T) {
	b := builderFor(t, `types:
  Address:
    fields:
      - { name: street, type: string }
  Customer:
    fields:
      - { name: customer_id, type: uuid, tag: 'required:"true"' }
      - { name: address, type: "*Address" }
      - { name: tags, type: "[]string", tag: 'json:"labels,omitempty"' }
`)

	customer, err := b.resolve("Customer")
	require.NoError(t, err)
	require.Equal(t, reflect.Struct, customer.Kind())
	require.Equal(t, 3, customer.NumField())

	id := customer.Field(0)
	assert.Equal(t, "CustomerId", id.Name)
	assert.Equal(t, reflect.StructTag(`json:"customer_id" required:"true"`), id.Tag)
	assert.Equal(t, "labels,omitempty", customer.Field(2).Tag.Get("json"))

	address, err := b.resolve("Address")
	require.NoError(t, err)
	assert.Equal(t, reflect.PointerTo(address), customer.Field(1).Type)

	again, err := b.resolve("Customer")
	require.NoError(t, err)
	assert.Equal(t, customer, again)

	assert.Equal(t, "Customer", apiexplorer.TypeName(customer))
	assert.Equal(t, "[]Customer", apiexplorer.TypeName(reflect.SliceOf(customer)))
	assert.Equal(t, "map[string]*Address", apiexplorer.TypeName(reflect.MapOf(reflect.TypeOf(""), reflect.PointerTo(address))))
}

func TestResolve_Errors(t *testing.T) {
	b := builderFor(t, `types:
  Node:
    fields:
      - { name: children, type: "[]Node" }
  Tree:
    fields:
      - { name: root, type: Node }
  Broken:
    fields:
      - { name: part, type: Widget }
`)

	t.Run("unknown", func(t *testing.T) {
		_, err := b.resolve("map[string]Gadget")
		var validationErr *apierrors.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "Gadget", validationErr.Value)
		assert.Contains(t, validationErr.Suggestions()[0], "Node")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := b.resolve("[]")
		assert.Error(t, err)
	})

	t.Run("recursive", func(t *testing.T) {
		_, err := b.resolve("Tree")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a cycle through Node")
		assert.Contains(t, err.Error(), "types.yaml:3")
	})

	t.Run("unknown field type is reported at the field", func(t *testing.T) {
		_, err := b.resolve("Broken")
		var validationErr *apierrors.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, 10, validationErr.Location().Line)
	})

	t.Run("buildAll reports each failure once", func(t *testing.T) {
		err := newTypeBuilder(b.manifest).buildAll()
		var multi *apierrors.MultipleErrors
		require.True(t, errors.As(err, &multi))
		assert.Equal(t, 2, multi.Count())
	})
}

func TestControllerType(t *testing.T) {
	orders := controllerType("orders")
	assert.Equal(t, orders, controllerType("OrdersController"))
	assert.NotEqual(t, orders, controllerType("Invoices"))

	assert.Equal(t, "OrdersController", apiexplorer.OwnerTypeName(orders))
	assert.Equal(t, "Orders", apiexplorer.Handler{Name: "Get", OwnerType: orders}.ControllerName())
}
