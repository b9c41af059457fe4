package apiexplorer

import (
	"encoding/json"
)

// OperationGroup is a named, ordered set of operations
type OperationGroup struct {
	Name       string                  `json:"name" yaml:"name"`
	Operations []*OperationDescription `json:"operations" yaml:"operations"`
}

func (g OperationGroup) clone() OperationGroup {
	ops := make([]*OperationDescription, len(g.Operations))
	for i, op := range g.Operations {
		ops[i] = op.Clone()
	}
	return OperationGroup{Name: g.Name, Operations: ops}
}

// OperationGroupCollection is the immutable result of a pipeline run.
// Accessors return copies, so it may be shared freely between goroutines.
type OperationGroupCollection struct {
	groups  []OperationGroup
	version int64
	total   int
}

// NewOperationGroupCollection freezes groups into a collection.
// The groups are copied; later changes by the caller are not observed.
func NewOperationGroupCollection(groups []OperationGroup, version int64) *OperationGroupCollection {
	c := &OperationGroupCollection{
		groups:  make([]OperationGroup, len(groups)),
		version: version,
	}
	for i, g := range groups {
		c.groups[i] = g.clone()
		c.total += len(g.Operations)
	}
	return c
}

// Groups returns the groups in their final order
func (c *OperationGroupCollection) Groups() []OperationGroup {
	out := make([]OperationGroup, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.clone()
	}
	return out
}

// GroupNames returns the group names in order
func (c *OperationGroupCollection) GroupNames() []string {
	names := make([]string, len(c.groups))
	for i, g := range c.groups {
		names[i] = g.Name
	}
	return names
}

// Group returns the named group
func (c *OperationGroupCollection) Group(name string) (OperationGroup, bool) {
	for _, g := range c.groups {
		if g.Name == name {
			return g.clone(), true
		}
	}
	return OperationGroup{}, false
}

// Operations returns every operation, group by group
func (c *OperationGroupCollection) Operations() []*OperationDescription {
	ops := make([]*OperationDescription, 0, c.total)
	for _, g := range c.groups {
		for _, op := range g.Operations {
			ops = append(ops, op.Clone())
		}
	}
	return ops
}

// TotalCount returns the number of operations across all groups
func (c *OperationGroupCollection) TotalCount() int {
	return c.total
}

// Version returns the declaration source version the collection was built from
func (c *OperationGroupCollection) Version() int64 {
	return c.version
}

// Diagnostics returns the diagnostics of every operation in output order
func (c *OperationGroupCollection) Diagnostics() []Diagnostic {
	var diags []Diagnostic
	for _, g := range c.groups {
		for _, op := range g.Operations {
			diags = append(diags, op.Diagnostics...)
		}
	}
	return diags
}

// HasErrors reports whether any operation carries an error-level diagnostic
func (c *OperationGroupCollection) HasErrors() bool {
	for _, d := range c.Diagnostics() {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

type collectionView struct {
	Version    int64            `json:"version" yaml:"version"`
	TotalCount int              `json:"totalCount" yaml:"totalCount"`
	Groups     []OperationGroup `json:"groups" yaml:"groups"`
}

func (c *OperationGroupCollection) view() collectionView {
	return collectionView{Version: c.version, TotalCount: c.total, Groups: c.groups}
}

// MarshalJSON encodes the collection; output is deterministic for identical input
func (c *OperationGroupCollection) MarshalJSON() ([]byte, error) { return json.Marshal(c.view()) }

// MarshalYAML encodes the collection
func (c *OperationGroupCollection) MarshalYAML() (interface{}, error) { return c.view(), nil }
