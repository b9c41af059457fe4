package annotations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

func TestParseAnnotation(t *testing.T) {
	parser := NewParser(nil)
	location := SourceLocation{File: "orders.yaml", Line: 12, Column: 5}

	tests := []struct {
		name     string
		input    string
		kind     AnnotationType
		expected map[string]interface{}
	}{
		{
			name:     "method with template and name",
			input:    "//axon::http GET {id:int} -Name=GetOrder",
			kind:     HTTPAnnotation,
			expected: map[string]interface{}{"method": "GET", "template": "{id:int}", "Name": "GetOrder"},
		},
		{
			name:     "lower case method",
			input:    "//axon::http delete",
			kind:     HTTPAnnotation,
			expected: map[string]interface{}{"method": "delete"},
		},
		{
			name:     "single quoted route",
			input:    "//axon::route 'api/[controller]'",
			kind:     RouteAnnotation,
			expected: map[string]interface{}{"template": "api/[controller]"},
		},
		{
			name:     "bare boolean flag, case insensitive",
			input:    "//axon::explorer -ignore",
			kind:     ExplorerAnnotation,
			expected: map[string]interface{}{"Ignore": true},
		},
		{
			name:     "defaults are applied",
			input:    "//axon::explorer -Group=v1",
			kind:     ExplorerAnnotation,
			expected: map[string]interface{}{"Group": "v1", "Ignore": false},
		},
		{
			name:     "explicit boolean value",
			input:    "//axon::explorer -Ignore=false -Group=\"internal tools\"",
			kind:     ExplorerAnnotation,
			expected: map[string]interface{}{"Group": "internal tools", "Ignore": false},
		},
		{
			name:     "quoted display name",
			input:    `//axon::display "Order number"`,
			kind:     DisplayAnnotation,
			expected: map[string]interface{}{"name": "Order number"},
		},
		{
			name:     "media type list",
			input:    "//axon::produces application/json,text/xml",
			kind:     ProducesAnnotation,
			expected: map[string]interface{}{"media": []string{"application/json", "text/xml"}},
		},
		{
			name:     "response status is an int",
			input:    "//axon::response 201 Order",
			kind:     ResponseAnnotation,
			expected: map[string]interface{}{"status": 201, "type": "Order"},
		},
		{
			name:     "response without payload",
			input:    "//axon::response 204",
			kind:     ResponseAnnotation,
			expected: map[string]interface{}{"status": 204},
		},
		{
			name:     "named binding",
			input:    "//axon::from_query page_size",
			kind:     FromQueryAnnotation,
			expected: map[string]interface{}{"name": "page_size"},
		},
		{
			name:     "binding without arguments",
			input:    "  //axon::from_body  ",
			kind:     FromBodyAnnotation,
			expected: map[string]interface{}{},
		},
		{
			name:     "space after comment marker",
			input:    "// axon::required",
			kind:     RequiredAnnotation,
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.ParseAnnotation(tt.input, location)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, parsed.Type)
			assert.Equal(t, tt.expected, parsed.Parameters)
			assert.Equal(t, location, parsed.Location)
		})
	}
}

func TestParseAnnotation_SyntaxErrors(t *testing.T) {
	parser := NewParser(nil)
	location := SourceLocation{File: "orders.yaml", Line: 3}

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"wrong prefix", "// axon:route api", "invalid annotation prefix"},
		{"missing type", "//axon::", "missing annotation type"},
		{"unterminated quote", `//axon::display "Order number`, "unterminated quoted string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.input, location)
			var syntaxErr *apierrors.SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "got %v", err)
			assert.Contains(t, syntaxErr.Message, tt.message)
			assert.Equal(t, "orders.yaml", syntaxErr.Location().File)
			assert.NotEmpty(t, syntaxErr.Suggestions())
		})
	}
}

func TestParseAnnotation_UnknownType(t *testing.T) {
	_, err := NewParser(nil).ParseAnnotation("//axon::widget -Size=3", SourceLocation{})

	var schemaErr *apierrors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "widget", schemaErr.SchemaName)
	require.Len(t, schemaErr.Suggestions(), 1)
	assert.Contains(t, schemaErr.Suggestions()[0], "from_query")
}

func TestParseAnnotation_ValidationErrors(t *testing.T) {
	parser := NewParser(nil)

	tests := []struct {
		name  string
		input string
		field string
	}{
		{"too many positional arguments", "//axon::http GET a b", "b"},
		{"unknown method", "//axon::http FETCH", "method"},
		{"status is not a number", "//axon::response ok", "status"},
		{"status out of range", "//axon::response 700", "status"},
		{"unknown option", "//axon::http GET -Colour=red", "Colour"},
		{"string option without value", "//axon::http GET -Name", "Name"},
		{"duplicate option", "//axon::http GET -Name=a -name=b", "Name"},
		{"missing required argument", "//axon::display", "name"},
		{"invalid media type", "//axon::consumes json", "media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.input, SourceLocation{File: "api.yaml", Line: 7})
			var validationErr *apierrors.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, 7, validationErr.Location().Line)
		})
	}
}

func TestParseAnnotation_CustomValidator(t *testing.T) {
	_, err := NewParser(nil).ParseAnnotation("//axon::explorer", SourceLocation{})

	var schemaErr *apierrors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Error(), "-Group or -Ignore")
}

func TestParseAnnotation_CollectsAllProblems(t *testing.T) {
	_, err := NewParser(nil).ParseAnnotation("//axon::http FETCH -Colour=red", SourceLocation{})

	var multi *apierrors.MultipleErrors
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 2, multi.Count())
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, IsAnnotation("//axon::route api"))
	assert.True(t, IsAnnotation("  // axon::required"))
	assert.False(t, IsAnnotation("// regular comment"))
	assert.False(t, IsAnnotation("axon::route api"))
}

func TestParseAll(t *testing.T) {
	comments := []string{
		"//axon::http GET {id}",
		"// fetches a single order",
		"//axon::response 200 Order",
		"//axon::response nope",
		"//axon::produces application/json",
	}

	parsed, err := ParseAll(NewParser(nil), comments, SourceLocation{File: "orders.go", Line: 10})
	require.Error(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, HTTPAnnotation, parsed[0].Type)
	assert.Equal(t, ResponseAnnotation, parsed[1].Type)
	assert.Equal(t, 12, parsed[1].Location.Line)
	assert.Equal(t, ProducesAnnotation, parsed[2].Type)

	var validationErr *apierrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 13, validationErr.Location().Line)
}
