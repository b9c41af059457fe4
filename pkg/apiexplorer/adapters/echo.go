package adapters

import (
	"github.com/labstack/echo/v4"
)

// EchoRoutes lists the routes registered on e. Not-found routes are skipped.
func EchoRoutes(e *echo.Echo) []Route {
	var routes []Route
	for _, r := range e.Routes() {
		if r.Method == echo.RouteNotFound {
			continue
		}
		routes = append(routes, Route{Method: r.Method, Path: r.Path, HandlerName: r.Name})
	}
	return routes
}

// FromEcho creates a declaration source over the routes of e
func FromEcho(e *echo.Echo, catalog Catalog) *RouteTable {
	return NewRouteTable("echo", func() []Route { return EchoRoutes(e) }, catalog)
}
