// Package explorer is the entry point of the description engine: it turns a
// declaration source into an OperationGroupCollection and keeps the result
// until the source changes.
package explorer

import (
	"reflect"
	"sync"

	"github.com/toyz/apiexplorer/internal/builder"
	"github.com/toyz/apiexplorer/internal/metadata"
	"github.com/toyz/apiexplorer/internal/pipeline"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Re-exported extension points
type (
	DetailProvider = metadata.DetailProvider
	Member         = metadata.Member
	Partial        = metadata.Partial
	Provider       = pipeline.Provider
	Context        = pipeline.Context
	ProviderFuncs  = pipeline.Funcs
	GroupOrdering  = pipeline.GroupOrdering
	Diagnostics    = utils.DiagnosticSystem
	CacheStats     = utils.CacheStats
)

const (
	FirstAppearance = pipeline.FirstAppearance
	SemanticVersion = pipeline.SemanticVersion
)

// NewDetailProvider wraps fn as a named metadata detail provider
func NewDetailProvider(name string, fn func(Member, Partial) (Partial, error)) DetailProvider {
	return metadata.NewProvider(name, fn)
}

// Ptr returns a pointer to v, for filling Partial fields
func Ptr[T any](v T) *T {
	return metadata.Ptr(v)
}

// Built-in pipeline providers
var (
	IgnoreProvider      = pipeline.IgnoreProvider
	ExcludeProvider     = pipeline.ExcludeProvider
	GroupByRouteValue   = pipeline.GroupByRouteValue
	OperationIDProvider = pipeline.OperationIDProvider
)

type config struct {
	compatibility apiexplorer.CompatibilityVersion
	formatters    apiexplorer.Formatters
	constraints   apiexplorer.ConstraintResolver
	detail        []DetailProvider
	overrides     map[reflect.Type]apiexplorer.BindingSource
	providers     []Provider
	defaultGroup  string
	ordering      GroupOrdering
	diagnostics   *utils.DiagnosticSystem
}

// Option configures an Explorer
type Option func(*config)

// WithCompatibility selects the metadata compatibility version
func WithCompatibility(version apiexplorer.CompatibilityVersion) Option {
	return func(c *config) { c.compatibility = version }
}

// WithFormatters replaces the formatter registry
func WithFormatters(formatters apiexplorer.Formatters) Option {
	return func(c *config) { c.formatters = formatters }
}

// WithConstraintResolver replaces the route constraint resolver
func WithConstraintResolver(resolver apiexplorer.ConstraintResolver) Option {
	return func(c *config) { c.constraints = resolver }
}

// WithDetailProvider appends a metadata detail provider after the defaults
func WithDetailProvider(p DetailProvider) Option {
	return func(c *config) { c.detail = append(c.detail, p) }
}

// WithBindingOverride forces the binding source of t. Built-in overrides
// (context.Context, multipart files) cannot be replaced.
func WithBindingOverride(t reflect.Type, source apiexplorer.BindingSource) Option {
	return func(c *config) { c.overrides[t] = source }
}

// WithProvider registers a pipeline provider
func WithProvider(p Provider) Option {
	return func(c *config) { c.providers = append(c.providers, p) }
}

// WithDefaultGroupName sets the group of operations without a group name
func WithDefaultGroupName(name string) Option {
	return func(c *config) { c.defaultGroup = name }
}

// WithGroupOrdering selects how groups are ordered
func WithGroupOrdering(ordering GroupOrdering) Option {
	return func(c *config) { c.ordering = ordering }
}

// WithDiagnostics routes engine output to diag
func WithDiagnostics(diag *Diagnostics) Option {
	return func(c *config) { c.diagnostics = diag }
}

// Explorer computes the operation collection of a declaration source lazily
// and caches it. It is safe for concurrent use.
type Explorer struct {
	source      apiexplorer.DeclarationSource
	cache       *metadata.Cache
	pipeline    *pipeline.Pipeline
	diagnostics *utils.DiagnosticSystem

	mu         sync.Mutex
	collection *apiexplorer.OperationGroupCollection
	built      int64
	builds     int
}

// New creates an explorer over source
func New(source apiexplorer.DeclarationSource, opts ...Option) *Explorer {
	cfg := config{
		compatibility: apiexplorer.Latest,
		formatters:    apiexplorer.DefaultFormatters(),
		constraints:   apiexplorer.DefaultConstraintResolver(),
		overrides:     make(map[reflect.Type]apiexplorer.BindingSource),
		defaultGroup:  pipeline.DefaultGroupName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cacheOpts := []metadata.Option{
		metadata.WithCompatibility(cfg.compatibility),
		metadata.WithDiagnostics(cfg.diagnostics),
	}
	for t, source := range cfg.overrides {
		cacheOpts = append(cacheOpts, metadata.WithOverride(t, source))
	}
	cache := metadata.NewCache(cacheOpts...)
	for _, p := range cfg.detail {
		cache.AddProvider(p)
	}

	b := builder.New(cache,
		builder.WithFormatters(cfg.formatters),
		builder.WithConstraintResolver(cfg.constraints),
		builder.WithDiagnostics(cfg.diagnostics),
	)
	p := pipeline.New(b,
		pipeline.WithProviders(cfg.providers...),
		pipeline.WithDefaultGroupName(cfg.defaultGroup),
		pipeline.WithGroupOrdering(cfg.ordering),
		pipeline.WithDiagnostics(cfg.diagnostics),
	)

	return &Explorer{
		source:      source,
		cache:       cache,
		pipeline:    p,
		diagnostics: cfg.diagnostics,
	}
}

// Collection returns the operation collection, building it on first use and
// again whenever the source version moved or Invalidate was called.
// An error is returned only when a pipeline provider fails.
func (e *Explorer) Collection() (*apiexplorer.OperationGroupCollection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	version := e.source.Version()
	if e.collection != nil && e.built == version {
		return e.collection, nil
	}

	e.diagnostics.Verbose("Building operation descriptions (source version %d)", version)
	collection, err := e.pipeline.Run(e.source.Declarations(), version)
	if err != nil {
		e.diagnostics.Error("Description pipeline failed: %v", err)
		return nil, err
	}

	e.collection = collection
	e.built = version
	e.builds++

	if diags := collection.Diagnostics(); len(diags) > 0 {
		e.diagnostics.Warn("%d operation diagnostic(s) reported", len(diags))
	}
	return collection, nil
}

// Invalidate drops the cached collection; the next Collection call rebuilds it
func (e *Explorer) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.collection = nil
}

// Builds returns how many times the collection was computed
func (e *Explorer) Builds() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.builds
}

// GetMetadata returns the metadata of member on t ("" for the type itself).
// Provider failures are returned as *apiexplorer.MetadataResolutionError.
func (e *Explorer) GetMetadata(t reflect.Type, member string) (apiexplorer.ModelMetadata, error) {
	return e.cache.GetMetadata(t, member)
}

// AddDetailProvider appends p to the metadata provider chain. Metadata already
// computed is kept; call Invalidate to rebuild descriptions with p in place.
func (e *Explorer) AddDetailProvider(p DetailProvider) {
	e.cache.AddProvider(p)
}

// MetadataProviders returns the names of the metadata provider chain
func (e *Explorer) MetadataProviders() []string {
	return e.cache.Providers()
}

// CacheStats returns metadata cache counters
func (e *Explorer) CacheStats() CacheStats {
	return e.cache.Stats()
}
