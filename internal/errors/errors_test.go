package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		loc  SourceLocation
		want string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "api.yaml"}, "api.yaml"},
		{SourceLocation{File: "api.yaml", Line: 4}, "api.yaml:4"},
		{SourceLocation{File: "api.yaml", Line: 4, Column: 7}, "api.yaml:4:7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
	assert.True(t, SourceLocation{Line: 3}.IsEmpty())
}

func TestBaseError_Error(t *testing.T) {
	err := New(RouteErrorCode, "bad route")
	assert.Equal(t, "bad route", err.Error())

	err.WithCause(stderrors.New("boom"))
	assert.Equal(t, "bad route: boom", err.Error())

	err.WithLocation(SourceLocation{File: "api.yaml", Line: 2})
	assert.Equal(t, "api.yaml:2: bad route: boom", err.Error())
}

func TestBaseError_Builders(t *testing.T) {
	cause := fs.ErrNotExist
	err := Wrapf(FileSystemErrorCode, cause, "failed to %s", "read").
		WithContext("path", "a.yaml").
		WithSuggestion("check the path")

	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.Equal(t, map[string]interface{}{"path": "a.yaml"}, err.Context())
	assert.Equal(t, []string{"check the path"}, err.Suggestions())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.NotNil(t, New(UnknownErrorCode, "x").Context())
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "MetadataResolutionError", MetadataErrorCode.String())
	assert.Equal(t, "AmbiguousBindingError", BindingErrorCode.String())
	assert.Equal(t, "StructuralRouteError", RouteErrorCode.String())
	assert.Equal(t, "FrozenStateError", StateErrorCode.String())
	assert.Equal(t, "UnknownError", ErrorCode(99).String())
}

func TestTypedErrors_KeepTheirType(t *testing.T) {
	loc := SourceLocation{File: "api.yaml", Line: 9}

	validation := NewValidationError("types.Order", "an identifier", "'1x'").
		WithValue("1x").
		WithLocation(loc).
		WithSuggestion("").
		WithSuggestion("rename the type")
	assert.Equal(t, "1x", validation.Value)
	assert.Equal(t, []string{"rename the type"}, validation.Suggestions())
	assert.Equal(t, "api.yaml:9: validation failed for 'types.Order': expected an identifier, got '1x'", validation.Error())

	syntax := NewSyntaxErrorWithToken("unexpected token", "-").WithLocation(loc)
	assert.Equal(t, "-", syntax.Token)
	assert.Contains(t, syntax.Error(), "(near token '-')")

	schema := NewSchemaError("response", "missing status").WithSuggestion("add a status code")
	assert.Equal(t, "response: missing status", schema.Message)
	assert.Equal(t, "response", schema.SchemaName)
	assert.Equal(t, []string{"add a status code"}, schema.Suggestions())

	var explorerErr ExplorerError
	require.True(t, stderrors.As(error(syntax), &explorerErr))
	assert.Equal(t, SyntaxErrorCode, explorerErr.ErrorCode())
	assert.Equal(t, loc, explorerErr.Location())
}

func TestMultipleErrors(t *testing.T) {
	var multi *MultipleErrors
	AddToMultiple(&multi, nil)
	assert.Nil(t, multi)
	assert.NoError(t, multi.ErrorOrNil())

	first := New(RouteErrorCode, "first")
	AddToMultiple(&multi, first)
	require.NotNil(t, multi)
	assert.Equal(t, "first", multi.Error())

	AddToMultiple(&multi, WrapFileSystemError("read", "a.yaml", fs.ErrNotExist))
	assert.Equal(t, 2, multi.Count())
	assert.Contains(t, multi.Error(), "multiple errors (2 total)")

	err := multi.ErrorOrNil()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var base *BaseError
	require.True(t, stderrors.As(err, &base))
	assert.Same(t, first, base)
}

func TestConfigurationError(t *testing.T) {
	err := ConfigurationError("paths", "at least one path is required")
	assert.Equal(t, "invalid paths configuration: at least one path is required", err.Error())
	assert.Equal(t, ConfigurationErrorCode, err.ErrorCode())
	assert.Equal(t, "paths", err.Context()["config_type"])
}
