package builder

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/toyz/apiexplorer/internal/binding"
	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/metadata"
	"github.com/toyz/apiexplorer/internal/routing"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

var formMediaTypes = []string{"multipart/form-data", "application/x-www-form-urlencoded"}

// Builder converts operation declarations into operation descriptions
type Builder struct {
	cache       *metadata.Cache
	resolver    *binding.Resolver
	formatters  apiexplorer.Formatters
	constraints apiexplorer.ConstraintResolver
	diagnostics *utils.DiagnosticSystem
}

// Option configures a Builder
type Option func(*Builder)

// WithFormatters sets the formatter registry consulted for media types
func WithFormatters(formatters apiexplorer.Formatters) Option {
	return func(b *Builder) { b.formatters = formatters }
}

// WithConstraintResolver sets the resolver for inline route constraints
func WithConstraintResolver(resolver apiexplorer.ConstraintResolver) Option {
	return func(b *Builder) { b.constraints = resolver }
}

// WithDiagnostics routes build progress to diag
func WithDiagnostics(diag *utils.DiagnosticSystem) Option {
	return func(b *Builder) { b.diagnostics = diag }
}

// New creates a builder reading metadata from cache
func New(cache *metadata.Cache, opts ...Option) *Builder {
	b := &Builder{
		cache:       cache,
		resolver:    binding.NewResolver(cache),
		formatters:  apiexplorer.DefaultFormatters(),
		constraints: apiexplorer.DefaultConstraintResolver(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the description of decl. Problems are attached to the
// returned description as diagnostics; Build never fails outright.
func (b *Builder) Build(decl apiexplorer.OperationDeclaration) *apiexplorer.OperationDescription {
	h := decl.Handler
	method := resolveMethod(decl)
	rawTemplate := resolveTemplate(decl)

	desc := &apiexplorer.OperationDescription{
		HTTPMethod:  method,
		HandlerName: handlerName(h),
		RouteValues: maps.Clone(decl.RouteValues),
		GroupName:   groupName(h),
		Declaration: &decl,
	}

	var routeErrs []error
	expanded, err := routing.ReplaceTokens(rawTemplate, decl.RouteValues)
	if err != nil {
		routeErrs = append(routeErrs, apiexplorer.NewStructuralRouteError(rawTemplate, "", "%v", err))
		expanded = rawTemplate
	}
	template, err := routing.Parse(expanded)
	if err != nil {
		routeErrs = append(routeErrs, apiexplorer.NewStructuralRouteError(expanded, "", "%v", err))
		template = routing.Template{Raw: expanded, Parts: []routing.Part{{Kind: routing.StaticPart, Value: expanded}}}
	}
	desc.RelativePath = template.RelativePath()

	if method == "" {
		desc.AddDiagnostic(apiexplorer.SeverityError, apiexplorer.NewUnresolvedMethodError(desc.HandlerName, "/"+desc.RelativePath))
	}
	for _, err := range routeErrs {
		desc.AddDiagnostic(apiexplorer.SeverityError, err)
	}

	resolved, err := b.resolver.ResolveAll(method, template, h.Parameters)
	b.attach(desc, err)

	desc.Parameters = b.describeParameters(resolved, template)
	for _, err := range b.checkRoute(template, desc.Parameters) {
		desc.AddDiagnostic(apiexplorer.SeverityError, err)
	}

	b.describeRequest(desc, h)
	b.describeResponses(desc, h)

	for _, d := range desc.Diagnostics {
		if d.Severity == apiexplorer.SeverityError {
			b.diagnostics.Warn("%s", d)
		} else {
			b.diagnostics.Verbose("%s", d)
		}
	}
	b.diagnostics.Debug("built %s with %d parameter(s)", desc.Key(), len(desc.Parameters))
	return desc
}

// attach records err, flattening collections, as error diagnostics
func (b *Builder) attach(desc *apiexplorer.OperationDescription, err error) {
	if err == nil {
		return
	}
	var multi *apierrors.MultipleErrors
	if errors.As(err, &multi) {
		for _, e := range multi.Errors {
			b.attach(desc, e)
		}
		return
	}
	desc.AddDiagnostic(apiexplorer.SeverityError, err)
}

func resolveMethod(decl apiexplorer.OperationDeclaration) string {
	if attr, ok := apiexplorer.FindAttribute[apiexplorer.HTTPMethod](decl.Handler.Attributes); ok && attr.Method != "" {
		return strings.ToUpper(attr.Method)
	}
	if decl.HTTPMethod != "" {
		return strings.ToUpper(decl.HTTPMethod)
	}
	if attr, ok := apiexplorer.FindAttribute[apiexplorer.HTTPMethod](decl.Handler.OwnerAttributes); ok && attr.Method != "" {
		return strings.ToUpper(attr.Method)
	}
	return ""
}

// resolveTemplate picks the action template and applies the controller prefix.
// Templates supplied with the declaration come from the routing layer and are used as is.
func resolveTemplate(decl apiexplorer.OperationDeclaration) string {
	h := decl.Handler
	prefix := ""
	if route, ok := apiexplorer.FindAttribute[apiexplorer.Route](h.OwnerAttributes); ok {
		prefix = route.Template
	}

	if attr, ok := apiexplorer.FindAttribute[apiexplorer.HTTPMethod](h.Attributes); ok && attr.Template != "" {
		return routing.Combine(prefix, attr.Template)
	}
	if route, ok := apiexplorer.FindAttribute[apiexplorer.Route](h.Attributes); ok {
		return routing.Combine(prefix, route.Template)
	}
	if decl.RouteTemplate != "" {
		return decl.RouteTemplate
	}
	return prefix
}

func handlerName(h apiexplorer.Handler) string {
	if h.OwnerType == nil {
		return h.Name
	}
	return apiexplorer.OwnerTypeName(h.OwnerType) + "." + h.Name
}

func groupName(h apiexplorer.Handler) string {
	if s, ok := apiexplorer.FindAttribute[apiexplorer.APIExplorerSettings](h.Attributes); ok && s.GroupName != "" {
		return s.GroupName
	}
	if s, ok := apiexplorer.FindAttribute[apiexplorer.APIExplorerSettings](h.OwnerAttributes); ok {
		return s.GroupName
	}
	return ""
}

func (b *Builder) describeParameters(resolved []binding.Resolved, template routing.Template) []apiexplorer.ParameterDescriptor {
	params := make([]apiexplorer.ParameterDescriptor, 0, len(resolved))
	for _, res := range resolved {
		attrs := res.Parameter.Attributes
		p := apiexplorer.ParameterDescriptor{
			Name:     res.Name,
			Type:     res.Parameter.Type,
			Source:   res.Source,
			Metadata: res.Metadata,
		}

		placeholder, hasPlaceholder := template.Placeholder(res.Name)
		switch {
		case res.Source == apiexplorer.SourcePath && hasPlaceholder:
			p.Required = !placeholder.Optional && !placeholder.HasDefault
			for _, c := range placeholder.Constraints {
				p.Constraints = append(p.Constraints, c.String())
			}
		case res.Source == apiexplorer.SourcePath:
			p.Required = true
		default:
			_, required := apiexplorer.FindAttribute[apiexplorer.Required](attrs)
			p.Required = required || res.Metadata.IsRequired
		}

		if dv, ok := apiexplorer.FindAttribute[apiexplorer.DefaultValue](attrs); ok {
			p.DefaultValue = dv.Value
		} else if hasPlaceholder && placeholder.HasDefault && res.Source == apiexplorer.SourcePath {
			p.DefaultValue = placeholder.Default
		} else if res.Metadata.DefaultValue != "" {
			p.DefaultValue = res.Metadata.DefaultValue
		}

		if dn, ok := apiexplorer.FindAttribute[apiexplorer.DisplayName](attrs); ok {
			p.Metadata.DisplayName = dn.Name
		}
		params = append(params, p)
	}
	return params
}

// checkRoute verifies placeholders against path-bound parameters and their constraints
func (b *Builder) checkRoute(template routing.Template, params []apiexplorer.ParameterDescriptor) []error {
	var errs []error
	raw := template.Raw

	for _, placeholder := range template.Placeholders() {
		var bound *apiexplorer.ParameterDescriptor
		for i := range params {
			if params[i].Source == apiexplorer.SourcePath && strings.EqualFold(params[i].Name, placeholder.Value) {
				bound = &params[i]
				break
			}
		}
		if bound == nil {
			errs = append(errs, apiexplorer.NewStructuralRouteError(raw, placeholder.Value,
				"placeholder {%s} has no path-bound parameter", placeholder.Value))
			continue
		}

		for _, token := range placeholder.Constraints {
			constraint, err := b.constraints.ResolveConstraint(token.Name, token.Args)
			if err != nil {
				errs = append(errs, apiexplorer.NewStructuralRouteError(raw, placeholder.Value, "%v", err))
				continue
			}
			if !constraint.Accepts(bound.Type) {
				errs = append(errs, apiexplorer.NewStructuralRouteError(raw, placeholder.Value,
					"constraint %s cannot represent parameter type %s", token, apiexplorer.TypeName(bound.Type)))
			}
			if placeholder.HasDefault && !constraint.Match(placeholder.Default) {
				errs = append(errs, apiexplorer.NewStructuralRouteError(raw, placeholder.Value,
					"default value %q does not satisfy constraint %s", placeholder.Default, token))
			}
		}
	}

	for _, p := range params {
		if p.Source == apiexplorer.SourcePath && !template.HasPlaceholder(p.Name) {
			errs = append(errs, apiexplorer.NewStructuralRouteError(raw, p.Name,
				"parameter %s is bound to the path but the template has no {%s} placeholder", p.Name, p.Name))
		}
	}
	return errs
}

func (b *Builder) describeRequest(desc *apiexplorer.OperationDescription, h apiexplorer.Handler) {
	hasForm := false
	for _, p := range desc.Parameters {
		switch {
		case p.Source == apiexplorer.SourceBody && desc.RequestBodyType == nil:
			desc.RequestBodyType = p.Type
		case apiexplorer.SourceForm.CanAcceptDataFrom(p.Source):
			hasForm = true
		}
	}

	var mediaTypes []string
	if desc.RequestBodyType != nil {
		supported := b.formatters.RequestMediaTypes(desc.RequestBodyType)
		if len(supported) == 0 {
			desc.AddDiagnostic(apiexplorer.SeverityWarning, apiexplorer.NewNoInputFormatterWarning(desc.RequestBodyType))
		}
		mediaTypes = append(mediaTypes, supported...)
	}
	if hasForm {
		mediaTypes = appendUnique(mediaTypes, formMediaTypes...)
	}

	if consumes, ok := findEither[apiexplorer.Consumes](h); ok && (desc.RequestBodyType != nil || hasForm) {
		mediaTypes = slices.Clone(consumes.MediaTypes)
	}
	desc.SupportedRequestMediaTypes = mediaTypes
}

func (b *Builder) describeResponses(desc *apiexplorer.OperationDescription, h apiexplorer.Handler) {
	declared := make(map[int]reflect.Type)
	for _, attr := range apiexplorer.FindAttributes[apiexplorer.ProducesResponseType](h.OwnerAttributes) {
		declared[attr.StatusCode] = attr.Type
	}
	for _, attr := range apiexplorer.FindAttributes[apiexplorer.ProducesResponseType](h.Attributes) {
		declared[attr.StatusCode] = attr.Type
	}
	if len(declared) == 0 {
		declared[200] = h.Returns
	}

	produces, hasProduces := findEither[apiexplorer.Produces](h)
	statuses := make([]int, 0, len(declared))
	for status := range declared {
		statuses = append(statuses, status)
	}
	slices.Sort(statuses)

	var all []string
	for _, status := range statuses {
		rt := apiexplorer.ResponseType{StatusCode: status, Type: declared[status]}
		if rt.Type != nil {
			if hasProduces {
				rt.MediaTypes = slices.Clone(produces.MediaTypes)
			} else {
				rt.MediaTypes = b.formatters.ResponseMediaTypes(rt.Type)
			}
		}
		all = appendUnique(all, rt.MediaTypes...)
		desc.ResponseTypes = append(desc.ResponseTypes, rt)
	}
	desc.SupportedResponseMediaTypes = all
}

// findEither returns the action-level attribute, falling back to the controller
func findEither[T apiexplorer.Attribute](h apiexplorer.Handler) (T, bool) {
	if attr, ok := apiexplorer.FindAttribute[T](h.Attributes); ok {
		return attr, true
	}
	return apiexplorer.FindAttribute[T](h.OwnerAttributes)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
