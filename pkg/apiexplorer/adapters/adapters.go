// Package adapters reads the route tables of gin, echo and fiber and turns them
// into operation declarations.
//
// Framework handlers are untyped (func(*gin.Context) and friends), so the typed
// shape of each operation comes from a Catalog keyed by handler function name.
// Routes whose handler is not in the catalog are still declared, with one string
// path parameter per placeholder.
package adapters

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/apiexplorer/internal/routing"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Route is one entry of a framework route table
type Route struct {
	Method string
	// Path uses the framework's colon syntax, e.g. /users/:id
	Path string
	// HandlerName is the runtime name of the route handler
	HandlerName string
}

// Catalog maps handler function names to typed handler descriptions
type Catalog map[string]apiexplorer.Handler

// NewCatalog creates an empty catalog
func NewCatalog() Catalog {
	return make(Catalog)
}

// Register describes the framework handler fn with h
func (c Catalog) Register(fn any, h apiexplorer.Handler) Catalog {
	c[apiexplorer.FuncName(fn)] = h
	return c
}

// Set describes the handler named name with h
func (c Catalog) Set(name string, h apiexplorer.Handler) Catalog {
	c[apiexplorer.ShortFuncName(name)] = h
	return c
}

// Lookup finds the description of the runtime handler name
func (c Catalog) Lookup(name string) (apiexplorer.Handler, bool) {
	h, ok := c[apiexplorer.ShortFuncName(name)]
	return h, ok
}

// RouteTable is a DeclarationSource over a live framework route table.
// Its version moves whenever the route list differs from the last one seen.
type RouteTable struct {
	framework string
	routes    func() []Route
	catalog   Catalog

	mu        sync.Mutex
	signature string
	version   int64
}

// NewRouteTable creates a source reading routes from list on every access
func NewRouteTable(framework string, list func() []Route, catalog Catalog) *RouteTable {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &RouteTable{framework: framework, routes: list, catalog: catalog}
}

// Framework returns the framework name the routes are read from
func (t *RouteTable) Framework() string {
	return t.framework
}

// Routes returns the current routes in path, then method order
func (t *RouteTable) Routes() []Route {
	routes := t.routes()
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		ri, rj := methodRank(routes[i].Method), methodRank(routes[j].Method)
		if ri != rj {
			return ri < rj
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// Version implements apiexplorer.DeclarationSource
func (t *RouteTable) Version() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.observe(t.Routes())
}

// Declarations implements apiexplorer.DeclarationSource
func (t *RouteTable) Declarations() []apiexplorer.OperationDeclaration {
	routes := t.Routes()

	t.mu.Lock()
	t.observe(routes)
	t.mu.Unlock()

	decls := make([]apiexplorer.OperationDeclaration, 0, len(routes))
	for _, r := range routes {
		decls = append(decls, t.declare(r))
	}
	return decls
}

func (t *RouteTable) observe(routes []Route) int64 {
	var b strings.Builder
	for _, r := range routes {
		b.WriteString(r.Method)
		b.WriteByte(' ')
		b.WriteString(r.Path)
		b.WriteByte(' ')
		b.WriteString(r.HandlerName)
		b.WriteByte('\n')
	}
	if sig := b.String(); sig != t.signature || t.version == 0 {
		t.signature = sig
		t.version++
	}
	return t.version
}

func (t *RouteTable) declare(r Route) apiexplorer.OperationDeclaration {
	template := routing.FromColonSyntax(r.Path)
	h, ok := t.catalog.Lookup(r.HandlerName)
	if !ok {
		h = untypedHandler(apiexplorer.ShortFuncName(r.HandlerName), template)
	}

	values := map[string]string{"framework": t.framework, "action": h.Name}
	if controller := h.ControllerName(); controller != "" {
		values["controller"] = controller
	}
	return apiexplorer.OperationDeclaration{
		HTTPMethod:    r.Method,
		RouteTemplate: template,
		Handler:       h,
		RouteValues:   values,
	}
}

var stringType = reflect.TypeOf("")

// untypedHandler describes an uncatalogued handler by its path placeholders
func untypedHandler(name, template string) apiexplorer.Handler {
	h := apiexplorer.Handler{Name: name}
	parsed, err := routing.Parse(template)
	if err != nil {
		return h
	}
	for _, p := range parsed.Placeholders() {
		h.Parameters = append(h.Parameters, apiexplorer.ParameterDeclaration{
			Name:       p.Value,
			Type:       stringType,
			Attributes: []apiexplorer.Attribute{apiexplorer.FromPath{}},
		})
	}
	return h
}

var methodOrder = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "CONNECT", "TRACE"}

func methodRank(method string) int {
	for i, m := range methodOrder {
		if m == method {
			return i
		}
	}
	return len(methodOrder)
}
