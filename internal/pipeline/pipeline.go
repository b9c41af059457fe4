package pipeline

import (
	"fmt"
	"sort"

	"github.com/toyz/apiexplorer/internal/builder"
	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Provider participates in a pipeline run. OnProvidersExecuting runs for all
// providers in ascending Order, then OnProvidersExecuted in descending Order.
type Provider interface {
	Order() int
	OnProvidersExecuting(ctx *Context) error
	OnProvidersExecuted(ctx *Context) error
}

// Pipeline turns declarations into a finalized collection
type Pipeline struct {
	providers    []Provider
	defaultGroup string
	ordering     GroupOrdering
	diagnostics  *utils.DiagnosticSystem
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithProviders registers additional providers
func WithProviders(providers ...Provider) Option {
	return func(p *Pipeline) { p.providers = append(p.providers, providers...) }
}

// WithDefaultGroupName sets the group for operations without a group name
func WithDefaultGroupName(name string) Option {
	return func(p *Pipeline) { p.defaultGroup = name }
}

// WithGroupOrdering selects how groups are ordered in the collection
func WithGroupOrdering(ordering GroupOrdering) Option {
	return func(p *Pipeline) { p.ordering = ordering }
}

// WithDiagnostics routes phase progress to diag
func WithDiagnostics(diag *utils.DiagnosticSystem) Option {
	return func(p *Pipeline) { p.diagnostics = diag }
}

// New creates a pipeline whose default provider builds descriptions with b
func New(b *builder.Builder, opts ...Option) *Pipeline {
	p := &Pipeline{
		providers:    []Provider{NewDefaultProvider(b)},
		defaultGroup: DefaultGroupName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Providers returns the providers in execution order
func (p *Pipeline) Providers() []Provider {
	sorted := append([]Provider(nil), p.providers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return sorted
}

// Run executes both provider phases over decls and finalizes the result.
// Per-operation problems are carried as diagnostics; an error is returned only
// when a provider itself fails.
func (p *Pipeline) Run(decls []apiexplorer.OperationDeclaration, version int64) (*apiexplorer.OperationGroupCollection, error) {
	ctx := NewContext(decls)
	providers := p.Providers()

	p.diagnostics.Verbose("Running %d provider(s) over %d declaration(s)", len(providers), len(decls))

	if err := ctx.advance(ExecutingBefore); err != nil {
		return nil, err
	}
	for _, provider := range providers {
		p.diagnostics.Debug("executing %s (order %d)", providerName(provider), provider.Order())
		if err := provider.OnProvidersExecuting(ctx); err != nil {
			return nil, providerError(provider, ExecutingBefore, err)
		}
	}

	if err := ctx.advance(ExecutingAfter); err != nil {
		return nil, err
	}
	for i := len(providers) - 1; i >= 0; i-- {
		provider := providers[i]
		p.diagnostics.Debug("executed %s (order %d)", providerName(provider), provider.Order())
		if err := provider.OnProvidersExecuted(ctx); err != nil {
			return nil, providerError(provider, ExecutingAfter, err)
		}
	}

	collection, err := ctx.Finalize(p.defaultGroup, p.ordering, version)
	if err != nil {
		return nil, err
	}
	p.diagnostics.Verbose("Finalized %d operation(s) in %d group(s)", collection.TotalCount(), len(collection.GroupNames()))
	return collection, nil
}

func providerError(provider Provider, phase State, err error) error {
	return apierrors.Wrapf(apierrors.ProviderErrorCode, err, "provider %s failed while %s", providerName(provider), phase).
		WithContext("provider", providerName(provider)).
		WithContext("phase", phase.String())
}

func providerName(provider Provider) string {
	if named, ok := provider.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", provider)
}
