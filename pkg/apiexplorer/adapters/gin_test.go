package adapters

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
	"github.com/toyz/apiexplorer/pkg/apiexplorer/explorer"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func ginListUsers(c *gin.Context)  {}
func ginGetUser(c *gin.Context)    {}
func ginCreateUser(c *gin.Context) {}
func ginAssets(c *gin.Context)     {}

func ginCatalog() Catalog {
	return NewCatalog().
		Register(ginListUsers, apiexplorer.MethodHandler(UsersController{}, "List", "page")).
		Register(ginGetUser, apiexplorer.MethodHandler(UsersController{}, "Get", "id")).
		Register(ginCreateUser, apiexplorer.MethodHandler(UsersController{}, "Create", "user"))
}

func TestFromGin_Declarations(t *testing.T) {
	engine := gin.New()
	api := engine.Group("/api")
	api.GET("/users", ginListUsers)
	api.GET("/users/:id", ginGetUser)
	engine.GET("/assets/*filepath", ginAssets)

	source := FromGin(engine, ginCatalog())
	decls := source.Declarations()
	require.Len(t, decls, 3)

	assert.Equal(t, "/api/users", decls[0].RouteTemplate)
	assert.Equal(t, "/api/users/{id}", decls[1].RouteTemplate)
	assert.Equal(t, "/assets/{*filepath}", decls[2].RouteTemplate)

	assert.Equal(t, "Get", decls[1].Handler.Name)
	assert.Equal(t, map[string]string{"framework": "gin", "controller": "Users", "action": "Get"}, decls[1].RouteValues)

	assert.Equal(t, "ginAssets", decls[2].Handler.Name)
	require.Len(t, decls[2].Handler.Parameters, 1)
	assert.Equal(t, "filepath", decls[2].Handler.Parameters[0].Name)
}

func TestFromGin_Explorer(t *testing.T) {
	engine := gin.New()
	engine.GET("/users", ginListUsers)
	engine.GET("/users/:id", ginGetUser)

	source := FromGin(engine, ginCatalog())
	e := explorer.New(source, explorer.WithProvider(explorer.GroupByRouteValue("controller")))

	collection, err := e.Collection()
	require.NoError(t, err)
	assert.False(t, collection.HasErrors())
	assert.Equal(t, []string{"Users"}, collection.GroupNames())

	ops := collection.Operations()
	require.Len(t, ops, 2)
	id, ok := ops[1].Parameter("id")
	require.True(t, ok)
	assert.Equal(t, apiexplorer.SourcePath, id.Source)
	assert.True(t, id.Required)

	// registering another route moves the source version and rebuilds
	engine.POST("/users", ginCreateUser)
	collection, err = e.Collection()
	require.NoError(t, err)
	assert.Equal(t, 3, collection.TotalCount())
	assert.Equal(t, 2, e.Builds())

	create, ok := collection.Group("Users")
	require.True(t, ok)
	assert.Equal(t, "POST /users", create.Operations[1].Key())
	assert.Equal(t, "UsersController.Create", create.Operations[1].HandlerName)
}
