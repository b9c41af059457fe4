package pipeline

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// State is the lifecycle position of a pipeline run
type State int

const (
	NotStarted State = iota
	ExecutingBefore
	ExecutingAfter
	Finalized
)

func (s State) String() string {
	switch s {
	case ExecutingBefore:
		return "executing"
	case ExecutingAfter:
		return "executed"
	case Finalized:
		return "finalized"
	default:
		return "not started"
	}
}

// GroupOrdering selects how finalized groups are ordered
type GroupOrdering int

const (
	// FirstAppearance keeps groups in the order their first operation was produced
	FirstAppearance GroupOrdering = iota
	// SemanticVersion sorts names like v1, v1.2 and 2.0 by version; other names follow in first-appearance order
	SemanticVersion
)

// DefaultGroupName is used for operations without a group name
const DefaultGroupName = "default"

// Context carries the declarations and the descriptions produced so far
// through one pipeline run
type Context struct {
	declarations []apiexplorer.OperationDeclaration
	results      []*apiexplorer.OperationDescription
	state        State
}

// NewContext creates a context over decls
func NewContext(decls []apiexplorer.OperationDeclaration) *Context {
	return &Context{declarations: slices.Clone(decls)}
}

// State returns the current lifecycle state
func (c *Context) State() State {
	return c.state
}

// Declarations returns the declarations the run was started with
func (c *Context) Declarations() []apiexplorer.OperationDeclaration {
	return slices.Clone(c.declarations)
}

// Results returns the descriptions produced so far. Before finalization the
// descriptions are live and providers may edit them in place; afterwards copies
// are returned.
func (c *Context) Results() []*apiexplorer.OperationDescription {
	if c.state == Finalized {
		out := make([]*apiexplorer.OperationDescription, len(c.results))
		for i, r := range c.results {
			out[i] = r.Clone()
		}
		return out
	}
	return slices.Clone(c.results)
}

// Len returns the number of descriptions produced so far
func (c *Context) Len() int {
	return len(c.results)
}

// Add appends descriptions to the results
func (c *Context) Add(descs ...*apiexplorer.OperationDescription) error {
	if c.state == Finalized {
		return apiexplorer.NewFrozenStateError("add operations")
	}
	for _, d := range descs {
		if d != nil {
			c.results = append(c.results, d)
		}
	}
	return nil
}

// Remove drops every description matching pred and returns how many were removed
func (c *Context) Remove(pred func(*apiexplorer.OperationDescription) bool) (int, error) {
	if c.state == Finalized {
		return 0, apiexplorer.NewFrozenStateError("remove operations")
	}
	before := len(c.results)
	c.results = slices.DeleteFunc(c.results, pred)
	return before - len(c.results), nil
}

// Update applies fn to every description in order
func (c *Context) Update(fn func(*apiexplorer.OperationDescription)) error {
	if c.state == Finalized {
		return apiexplorer.NewFrozenStateError("update operations")
	}
	for _, d := range c.results {
		fn(d)
	}
	return nil
}

func (c *Context) advance(to State) error {
	if c.state == Finalized {
		return apiexplorer.NewFrozenStateError("enter the " + to.String() + " phase")
	}
	c.state = to
	return nil
}

// Finalize groups the results and freezes the context. Operations with an empty
// group name land in defaultGroup. A second call fails with a FrozenStateError.
func (c *Context) Finalize(defaultGroup string, ordering GroupOrdering, version int64) (*apiexplorer.OperationGroupCollection, error) {
	if c.state == Finalized {
		return nil, apiexplorer.NewFrozenStateError("finalize")
	}
	if defaultGroup == "" {
		defaultGroup = DefaultGroupName
	}

	var groups []apiexplorer.OperationGroup
	index := make(map[string]int)
	for _, d := range c.results {
		name := d.GroupName
		if name == "" {
			name = defaultGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, apiexplorer.OperationGroup{Name: name})
		}
		groups[i].Operations = append(groups[i].Operations, d)
	}

	if ordering == SemanticVersion {
		sortBySemver(groups)
	}

	c.state = Finalized
	return apiexplorer.NewOperationGroupCollection(groups, version), nil
}

// sortBySemver orders version-named groups ascending ahead of the rest
func sortBySemver(groups []apiexplorer.OperationGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		vi, iok := canonicalVersion(groups[i].Name)
		vj, jok := canonicalVersion(groups[j].Name)
		switch {
		case iok && jok:
			return semver.Compare(vi, vj) < 0
		case iok:
			return true
		}
		return false
	})
}

func canonicalVersion(name string) (string, bool) {
	v := strings.ToLower(name)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}
