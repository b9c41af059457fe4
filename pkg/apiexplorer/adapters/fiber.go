package adapters

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// FiberRoutes lists the routes registered on app. Middleware mounted with Use
// is skipped, as are the HEAD routes fiber adds for every GET route.
func FiberRoutes(app *fiber.App) []Route {
	all := app.GetRoutes(true)

	type key struct{ path, handler string }
	gets := make(map[key]bool)
	routes := make([]Route, 0, len(all))
	for _, r := range all {
		if len(r.Handlers) == 0 {
			continue
		}
		route := Route{
			Method:      r.Method,
			Path:        r.Path,
			HandlerName: apiexplorer.FuncName(r.Handlers[len(r.Handlers)-1]),
		}
		if r.Method == fiber.MethodGet {
			gets[key{route.Path, route.HandlerName}] = true
		}
		routes = append(routes, route)
	}

	out := routes[:0]
	for _, r := range routes {
		if r.Method == fiber.MethodHead && gets[key{r.Path, r.HandlerName}] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FromFiber creates a declaration source over the routes of app
func FromFiber(app *fiber.App, catalog Catalog) *RouteTable {
	return NewRouteTable("fiber", func() []Route { return FiberRoutes(app) }, catalog)
}
