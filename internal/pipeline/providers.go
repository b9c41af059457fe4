package pipeline

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/toyz/apiexplorer/internal/builder"
	"github.com/toyz/apiexplorer/internal/routing"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// DefaultProviderOrder is the order of the provider that builds descriptions
const DefaultProviderOrder = -1000

// Funcs adapts plain functions to Provider. Nil phases do nothing.
type Funcs struct {
	Label     string
	Position  int
	Executing func(*Context) error
	Executed  func(*Context) error
}

func (f Funcs) Name() string {
	if f.Label == "" {
		return "provider"
	}
	return f.Label
}

func (f Funcs) Order() int { return f.Position }

func (f Funcs) OnProvidersExecuting(ctx *Context) error {
	if f.Executing == nil {
		return nil
	}
	return f.Executing(ctx)
}

func (f Funcs) OnProvidersExecuted(ctx *Context) error {
	if f.Executed == nil {
		return nil
	}
	return f.Executed(ctx)
}

// DefaultProvider builds one description per declaration
type DefaultProvider struct {
	builder *builder.Builder
}

// NewDefaultProvider creates the description-building provider
func NewDefaultProvider(b *builder.Builder) *DefaultProvider {
	return &DefaultProvider{builder: b}
}

func (p *DefaultProvider) Name() string { return "default" }
func (p *DefaultProvider) Order() int   { return DefaultProviderOrder }

func (p *DefaultProvider) OnProvidersExecuting(ctx *Context) error {
	for _, decl := range ctx.Declarations() {
		if err := ctx.Add(p.builder.Build(decl)); err != nil {
			return err
		}
	}
	return nil
}

func (p *DefaultProvider) OnProvidersExecuted(*Context) error { return nil }

// IgnoreProvider drops operations marked with APIExplorerSettings{IgnoreAPI: true}.
// Action settings take precedence over controller settings.
func IgnoreProvider() Provider {
	return Funcs{
		Label: "ignore",
		Executing: func(ctx *Context) error {
			_, err := ctx.Remove(isIgnored)
			return err
		},
	}
}

func isIgnored(desc *apiexplorer.OperationDescription) bool {
	if desc.Declaration == nil {
		return false
	}
	h := desc.Declaration.Handler
	if s, ok := apiexplorer.FindAttribute[apiexplorer.APIExplorerSettings](h.Attributes); ok {
		return s.IgnoreAPI
	}
	s, ok := apiexplorer.FindAttribute[apiexplorer.APIExplorerSettings](h.OwnerAttributes)
	return ok && s.IgnoreAPI
}

// ExcludeProvider drops operations matching pred
func ExcludeProvider(pred func(*apiexplorer.OperationDescription) bool) Provider {
	return Funcs{
		Label: "exclude",
		Executing: func(ctx *Context) error {
			_, err := ctx.Remove(pred)
			return err
		},
	}
}

// GroupByRouteValue assigns the route value named key as group name to
// operations that have none yet
func GroupByRouteValue(key string) Provider {
	return Funcs{
		Label: "group-by-" + key,
		Executing: func(ctx *Context) error {
			return ctx.Update(func(desc *apiexplorer.OperationDescription) {
				if desc.GroupName == "" {
					desc.GroupName = desc.RouteValues[key]
				}
			})
		},
	}
}

// OperationIDProvider assigns lower-camel operation IDs after all other
// providers ran. The route name of an HTTPMethod attribute is used when set,
// otherwise the ID is derived from method and path, e.g. GET items/{id} becomes
// getItemsById. Repeated IDs get numbered suffixes starting at 2.
func OperationIDProvider() Provider {
	return Funcs{
		Label: "operation-id",
		Executed: func(ctx *Context) error {
			taken := make(map[string]bool)
			for _, desc := range ctx.Results() {
				if desc.OperationID != "" {
					taken[desc.OperationID] = true
				}
			}
			return ctx.Update(func(desc *apiexplorer.OperationDescription) {
				if desc.OperationID != "" {
					return
				}
				base := operationIDBase(desc)
				id := base
				for n := 2; taken[id]; n++ {
					id = base + strconv.Itoa(n)
				}
				taken[id] = true
				desc.OperationID = id
			})
		},
	}
}

func operationIDBase(desc *apiexplorer.OperationDescription) string {
	if desc.Declaration != nil {
		if attr, ok := apiexplorer.FindAttribute[apiexplorer.HTTPMethod](desc.Declaration.Handler.Attributes); ok && attr.Name != "" {
			return strcase.ToLowerCamel(attr.Name)
		}
	}

	method := strings.ToLower(desc.HTTPMethod)
	if method == "" {
		method = "any"
	}
	words := []string{method}
	template, err := routing.Parse(desc.RelativePath)
	if err != nil {
		return strcase.ToLowerCamel(method + " " + desc.RelativePath)
	}
	for _, part := range template.Parts {
		if part.Kind == routing.ParameterPart {
			words = append(words, "by", part.Value)
			continue
		}
		words = append(words, strings.FieldsFunc(part.Value, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})...)
	}
	return strcase.ToLowerCamel(strings.Join(words, " "))
}
