package apiexplorer

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

type Item struct {
	ID   int
	Name string
}

type ItemsController struct{}

func (ItemsController) Get(ctx context.Context, id int, filter string) (*Item, error) {
	return nil, nil
}

func listItems(filter string) []Item { return nil }

func TestBindingSource_ParseAndString(t *testing.T) {
	testCases := []struct {
		input    string
		expected BindingSource
	}{
		{"path", SourcePath},
		{"Route", SourcePath},
		{"QUERY", SourceQuery},
		{"header", SourceHeader},
		{"body", SourceBody},
		{"form", SourceForm},
		{"file", SourceFormFile},
		{"services", SourceService},
		{"custom", SourceCustom},
		{"", SourceNone},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseBindingSource(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := ParseBindingSource("cookie-jar")
	assert.Error(t, err)

	text, err := SourceFormFile.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "FormFile", string(text))
}

func TestBindingSource_CanAcceptDataFrom(t *testing.T) {
	assert.True(t, SourceForm.CanAcceptDataFrom(SourceFormFile))
	assert.True(t, SourceFormFile.CanAcceptDataFrom(SourceForm))
	assert.True(t, SourceBody.CanAcceptDataFrom(SourceBody))
	assert.False(t, SourceBody.CanAcceptDataFrom(SourceForm))

	assert.True(t, SourcePath.IsFromRequest())
	assert.False(t, SourceService.IsFromRequest())
	assert.False(t, SourceCustom.IsFromRequest())
}

func TestMethodHandler(t *testing.T) {
	h := MethodHandler(ItemsController{}, "Get", "ctx", "id", "filter")

	assert.Equal(t, "Get", h.Name)
	assert.Equal(t, "Items", h.ControllerName())
	require.Len(t, h.Parameters, 3)
	assert.Equal(t, "ctx", h.Parameters[0].Name)
	assert.Equal(t, reflect.TypeOf(0), h.Parameters[1].Type)
	assert.Equal(t, reflect.TypeOf(&Item{}), h.Returns)
}

func TestFuncHandler(t *testing.T) {
	h := FuncHandler("", listItems)

	assert.Equal(t, "listItems", h.Name)
	require.Len(t, h.Parameters, 1)
	assert.Equal(t, "arg0", h.Parameters[0].Name)
	assert.Equal(t, reflect.TypeOf([]Item{}), h.Returns)

	assert.Panics(t, func() { FuncHandler("x", 42) })
}

func TestHandler_WithAttributesCopies(t *testing.T) {
	base := FuncHandler("list", listItems, "filter")
	withAttr := base.WithParameterAttributes("filter", FromHeader{Name: "X-Filter"}).
		WithAttributes(HTTPMethod{Method: "GET"})

	assert.Empty(t, base.Parameters[0].Attributes)
	assert.Empty(t, base.Attributes)

	attr, ok := FindBindingAttribute(withAttr.Parameters[0].Attributes)
	require.True(t, ok)
	assert.Equal(t, SourceHeader, attr.BindingSource())
	assert.Equal(t, "X-Filter", attr.ModelName())

	method, ok := FindAttribute[HTTPMethod](withAttr.Attributes)
	require.True(t, ok)
	assert.Equal(t, "GET", method.Method)
}

func TestStaticSource_AddFillsRouteValues(t *testing.T) {
	source := NewStaticSource()
	assert.Equal(t, int64(0), source.Version())

	source.
		AddHandler("GET", "/items/{id}", MethodHandler(ItemsController{}, "Get")).
		AddHandler("GET", "/items", FuncHandler("List", listItems))

	assert.Equal(t, int64(2), source.Version())
	decls := source.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, map[string]string{"controller": "Items", "action": "Get"}, decls[0].RouteValues)
	assert.Equal(t, map[string]string{"action": "List"}, decls[1].RouteValues)

	decls[0].RouteValues["controller"] = "changed"
	assert.Equal(t, "Items", source.Declarations()[0].RouteValues["controller"])
}

func TestIsSimpleType(t *testing.T) {
	simple := []any{0, "", true, 1.5, time.Time{}, time.Second, uuid.UUID{}, []int{}, new(string)}
	for _, v := range simple {
		assert.True(t, IsSimpleType(reflect.TypeOf(v)), "%T should be simple", v)
	}

	complexTypes := []any{Item{}, &Item{}, map[string]int{}, []Item{}}
	for _, v := range complexTypes {
		assert.False(t, IsSimpleType(reflect.TypeOf(v)), "%T should not be simple", v)
	}
	assert.False(t, IsSimpleType(nil))
}

func TestConstraintResolver_Builtins(t *testing.T) {
	resolver := DefaultConstraintResolver()

	testCases := []struct {
		name    string
		args    []string
		typ     reflect.Type
		accepts bool
		value   string
		matches bool
	}{
		{"int", nil, reflect.TypeOf(0), true, "42", true},
		{"int", nil, reflect.TypeOf(uuid.UUID{}), false, "abc", false},
		{"long", nil, reflect.TypeOf(int64(0)), true, "-7", true},
		{"bool", nil, reflect.TypeOf(false), true, "true", true},
		{"guid", nil, reflect.TypeOf(uuid.UUID{}), true, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"alpha", nil, reflect.TypeOf(0), false, "abc1", false},
		{"datetime", nil, reflect.TypeOf(time.Time{}), true, "2024-01-02", true},
		{"range", []string{"1", "10"}, reflect.TypeOf(0), true, "11", false},
		{"min", []string{"5"}, reflect.TypeOf(0.0), true, "5", true},
		{"maxlength", []string{"3"}, reflect.TypeOf(""), true, "abcd", false},
		{"length", []string{"2", "4"}, reflect.TypeOf(""), true, "abc", true},
		{"regex", []string{"^[a-z]+$"}, reflect.TypeOf(""), true, "abc", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := resolver.ResolveConstraint(tc.name, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.accepts, c.Accepts(tc.typ))
			assert.Equal(t, tc.matches, c.Match(tc.value))
		})
	}
}

func TestConstraintResolver_Errors(t *testing.T) {
	resolver := DefaultConstraintResolver()

	_, err := resolver.ResolveConstraint("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownConstraint)

	_, err = resolver.ResolveConstraint("int", []string{"1"})
	assert.Error(t, err)

	_, err = resolver.ResolveConstraint("range", []string{"10", "1"})
	assert.Error(t, err)

	_, err = resolver.ResolveConstraint("regex", []string{"("})
	assert.Error(t, err)

	// string parameters accept anything
	c, err := resolver.ResolveConstraint("int", nil)
	require.NoError(t, err)
	assert.True(t, c.Accepts(reflect.TypeOf("")))
	assert.Equal(t, "int", c.Token())
}

func TestFormatters_MediaTypes(t *testing.T) {
	formatters := DefaultFormatters()
	itemType := reflect.TypeOf(Item{})
	mapType := reflect.TypeOf(map[string]int{})

	assert.Equal(t, []string{"application/json", "text/json"}, formatters.RequestMediaTypes(itemType))
	assert.Empty(t, formatters.RequestMediaTypes(reflect.TypeOf(make(chan int))))

	withXML := formatters.With(XMLFormatter{})
	assert.Len(t, formatters.Input, 1, "With must not modify the receiver")
	assert.Equal(t, []string{"application/json", "text/json", "application/xml", "text/xml"}, withXML.ResponseMediaTypes(itemType))
	assert.Equal(t, []string{"application/json", "text/json"}, withXML.ResponseMediaTypes(mapType))
}

func TestErrors_CarryCodes(t *testing.T) {
	var err error = NewAmbiguousBindingError("POST", "items", []string{"a", "b"})

	var ambiguous *AmbiguousBindingError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"a", "b"}, ambiguous.Parameters)
	assert.Equal(t, apierrors.BindingErrorCode, ambiguous.ErrorCode())
	assert.Contains(t, err.Error(), "a, b")

	frozen := NewFrozenStateError("add operation")
	assert.ErrorIs(t, frozen, ErrFrozen)

	diag := Diagnostic{Severity: SeverityError, Operation: "POST /items", Err: err}
	assert.Equal(t, "AmbiguousBindingError", diag.Code())
}

func TestCollection_IsImmutable(t *testing.T) {
	op := &OperationDescription{
		HTTPMethod:   "GET",
		RelativePath: "items",
		RouteValues:  map[string]string{"controller": "Items"},
		Parameters:   []ParameterDescriptor{{Name: "filter", Source: SourceQuery}},
	}
	groups := []OperationGroup{{Name: "v1", Operations: []*OperationDescription{op}}}
	collection := NewOperationGroupCollection(groups, 3)

	op.HTTPMethod = "POST"
	groups[0].Name = "changed"

	assert.Equal(t, 1, collection.TotalCount())
	assert.Equal(t, int64(3), collection.Version())
	assert.Equal(t, []string{"v1"}, collection.GroupNames())

	ops := collection.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, "GET", ops[0].HTTPMethod)

	ops[0].Parameters[0].Name = "mutated"
	group, ok := collection.Group("v1")
	require.True(t, ok)
	assert.Equal(t, "filter", group.Operations[0].Parameters[0].Name)
}

func TestCollection_MarshalJSONIsStable(t *testing.T) {
	build := func() *OperationGroupCollection {
		op := &OperationDescription{
			HTTPMethod:    "GET",
			RelativePath:  "items/{id}",
			Parameters:    []ParameterDescriptor{{Name: "id", Type: reflect.TypeOf(0), Source: SourcePath, Required: true}},
			ResponseTypes: []ResponseType{{StatusCode: 200, Type: reflect.TypeOf(Item{})}},
			RouteValues:   map[string]string{"b": "2", "a": "1"},
		}
		return NewOperationGroupCollection([]OperationGroup{{Name: "default", Operations: []*OperationDescription{op}}}, 1)
	}

	first, err := json.Marshal(build())
	require.NoError(t, err)
	second, err := json.Marshal(build())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"source":"Path"`)
	assert.Contains(t, string(first), `"type":"apiexplorer.Item"`)
}
