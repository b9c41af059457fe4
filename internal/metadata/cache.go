package metadata

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Cache memoizes merged model metadata per (type, member) key.
//
// Entries are sticky: providers added after a key was computed do not change it.
type Cache struct {
	compatibility apiexplorer.CompatibilityVersion
	diagnostics   *utils.DiagnosticSystem

	mu        sync.RWMutex
	providers []DetailProvider
	overrides map[reflect.Type]apiexplorer.BindingSource

	entries *utils.Cache[apiexplorer.MetadataKey, apiexplorer.ModelMetadata]
}

// Option configures a Cache
type Option func(*Cache)

// WithCompatibility selects the compatibility version
func WithCompatibility(version apiexplorer.CompatibilityVersion) Option {
	return func(c *Cache) { c.compatibility = version }
}

// WithProviders replaces the default provider chain
func WithProviders(providers ...DetailProvider) Option {
	return func(c *Cache) { c.providers = slices.Clone(providers) }
}

// WithOverride forces the binding source of t. Built-in overrides still win.
func WithOverride(t reflect.Type, source apiexplorer.BindingSource) Option {
	return func(c *Cache) { c.overrides[t] = source }
}

// WithDiagnostics routes cache activity to diag
func WithDiagnostics(diag *utils.DiagnosticSystem) Option {
	return func(c *Cache) { c.diagnostics = diag }
}

// NewCache creates a cache with the default provider chain
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		compatibility: apiexplorer.Latest,
		providers:     DefaultProviders(),
		overrides:     make(map[reflect.Type]apiexplorer.BindingSource),
		entries:       utils.NewCache[apiexplorer.MetadataKey, apiexplorer.ModelMetadata](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compatibility returns the configured compatibility version
func (c *Cache) Compatibility() apiexplorer.CompatibilityVersion {
	return c.compatibility
}

// AddProvider appends p to the chain. Only keys computed afterwards see it.
func (c *Cache) AddProvider(p DetailProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers = append(c.providers, p)
}

// Providers returns the names of the current chain in order
func (c *Cache) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// OverrideSource returns the forced binding source of t, if any
func (c *Cache) OverrideSource(t reflect.Type) (apiexplorer.BindingSource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return OverrideSource(t, c.overrides)
}

// GetMetadata returns the metadata of member on ownerType ("" for the type itself).
// Failures are returned as *apiexplorer.MetadataResolutionError and not cached.
func (c *Cache) GetMetadata(ownerType reflect.Type, member string) (apiexplorer.ModelMetadata, error) {
	key := apiexplorer.MetadataKey{Type: ownerType, Member: member}
	md, err := c.entries.GetOrCompute(key, func() (apiexplorer.ModelMetadata, error) {
		return c.compute(key)
	})
	if err != nil {
		return apiexplorer.ModelMetadata{}, err
	}
	return md.Clone(), nil
}

// Stats returns hit and miss counters
func (c *Cache) Stats() utils.CacheStats {
	return c.entries.GetStats()
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.entries.Size()
}

func (c *Cache) compute(key apiexplorer.MetadataKey) (apiexplorer.ModelMetadata, error) {
	member, err := resolveMember(key)
	if err != nil {
		return apiexplorer.ModelMetadata{}, apiexplorer.NewMetadataResolutionError("member", key, err)
	}

	c.mu.RLock()
	providers := slices.Clone(c.providers)
	overrides := c.overrides
	c.mu.RUnlock()

	var partial Partial
	for _, p := range providers {
		next, err := runProvider(p, member, partial.Clone())
		if err != nil {
			c.diagnostics.Warn("metadata provider %s failed for %s: %v", p.Name(), key, err)
			return apiexplorer.ModelMetadata{}, apiexplorer.NewMetadataResolutionError(p.Name(), key, err)
		}
		partial = partial.Merge(next)
	}

	md := c.finish(member, partial)

	if source, ok := OverrideSource(member.ModelType, overrides); ok {
		md.BindingSource = source
	}

	c.diagnostics.Debug("computed metadata for %s (source=%s, required=%t)", key, md.BindingSource, md.IsRequired)
	return md, nil
}

func (c *Cache) finish(member Member, p Partial) apiexplorer.ModelMetadata {
	md := apiexplorer.ModelMetadata{
		OwnerType:    member.Key.Type,
		MemberName:   member.Key.Member,
		ModelType:    member.ModelType,
		IsSimpleType: apiexplorer.IsSimpleType(member.ModelType),
	}
	if p.IsRequired != nil {
		md.IsRequired = *p.IsRequired
	} else if c.compatibility >= apiexplorer.Version3 && !member.IsType() {
		md.IsRequired = !apiexplorer.IsNullable(member.ModelType)
	}
	if p.IsReadOnly != nil {
		md.IsReadOnly = *p.IsReadOnly
	}
	if p.DisplayName != nil {
		md.DisplayName = *p.DisplayName
	}
	if p.BindingSource != nil {
		md.BindingSource = *p.BindingSource
	}
	if p.BinderModelName != nil {
		md.BinderModelName = *p.BinderModelName
	}
	if p.DefaultValue != nil {
		md.DefaultValue = *p.DefaultValue
	}
	md.ValidationConstraints = slices.Clone(p.Constraints)
	return md
}

// runProvider calls p, turning a panic into an error. partial must be a copy
// the provider is free to modify.
func runProvider(p DetailProvider, member Member, partial Partial) (out Partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Provide(member, partial)
}

func resolveMember(key apiexplorer.MetadataKey) (Member, error) {
	if key.Type == nil {
		return Member{}, fmt.Errorf("owner type is nil")
	}
	owner := key.Type
	for owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	member := Member{Key: key, OwnerType: owner}
	if key.Member == "" {
		member.ModelType = key.Type
		return member, nil
	}
	if owner.Kind() != reflect.Struct {
		return Member{}, fmt.Errorf("%s is not a struct and has no member %q", owner, key.Member)
	}
	field, ok := owner.FieldByName(key.Member)
	if !ok || !field.IsExported() {
		return Member{}, fmt.Errorf("%s has no exported member %q", owner, key.Member)
	}
	member.ModelType = field.Type
	member.Field = &field
	return member, nil
}
