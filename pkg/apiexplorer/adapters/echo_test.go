package adapters

import (
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
	"github.com/toyz/apiexplorer/pkg/apiexplorer/explorer"
)

func echoGetUser(c echo.Context) error    { return nil }
func echoCreateUser(c echo.Context) error { return nil }
func echoStatic(c echo.Context) error     { return nil }
func echoNotFound(c echo.Context) error   { return nil }

func TestFromEcho_Declarations(t *testing.T) {
	e := echo.New()
	e.GET("/users/:id", echoGetUser)
	e.POST("/users", echoCreateUser)
	e.GET("/static/*", echoStatic)
	e.RouteNotFound("/*", echoNotFound)

	catalog := NewCatalog().
		Register(echoGetUser, apiexplorer.MethodHandler(UsersController{}, "Get", "id")).
		Register(echoCreateUser, apiexplorer.MethodHandler(UsersController{}, "Create", "user"))

	decls := FromEcho(e, catalog).Declarations()
	require.Len(t, decls, 3)

	assert.Equal(t, "/static/{*wildcard}", decls[0].RouteTemplate)
	assert.Equal(t, "echoStatic", decls[0].Handler.Name)
	assert.Equal(t, "POST", decls[1].HTTPMethod)
	assert.Equal(t, "Create", decls[1].Handler.Name)
	assert.Equal(t, "/users/{id}", decls[2].RouteTemplate)
	assert.Equal(t, "echo", decls[2].RouteValues["framework"])
}

func TestFromEcho_Explorer(t *testing.T) {
	e := echo.New()
	e.GET("/users/:id", echoGetUser)
	e.POST("/users", echoCreateUser)

	catalog := NewCatalog().
		Register(echoGetUser, apiexplorer.MethodHandler(UsersController{}, "Get", "id")).
		Register(echoCreateUser, apiexplorer.MethodHandler(UsersController{}, "Create", "user"))

	collection, err := explorer.New(FromEcho(e, catalog), explorer.WithProvider(explorer.OperationIDProvider())).Collection()
	require.NoError(t, err)
	assert.False(t, collection.HasErrors())

	ops := collection.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "postUsers", ops[0].OperationID)
	assert.Equal(t, reflect.TypeOf(User{}), ops[0].RequestBodyType)
	assert.Equal(t, []string{"application/json", "text/json"}, ops[0].SupportedRequestMediaTypes)
	assert.Equal(t, "getUsersById", ops[1].OperationID)
}
