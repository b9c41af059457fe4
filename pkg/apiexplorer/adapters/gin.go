package adapters

import (
	"github.com/gin-gonic/gin"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// GinRoutes lists the routes registered on engine
func GinRoutes(engine *gin.Engine) []Route {
	info := engine.Routes()
	routes := make([]Route, 0, len(info))
	for _, ri := range info {
		name := ri.Handler
		if ri.HandlerFunc != nil {
			name = apiexplorer.FuncName(ri.HandlerFunc)
		}
		routes = append(routes, Route{Method: ri.Method, Path: ri.Path, HandlerName: name})
	}
	return routes
}

// FromGin creates a declaration source over the routes of engine
func FromGin(engine *gin.Engine, catalog Catalog) *RouteTable {
	return NewRouteTable("gin", func() []Route { return GinRoutes(engine) }, catalog)
}
