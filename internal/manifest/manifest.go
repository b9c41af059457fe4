// Package manifest reads YAML declaration manifests: payload types, controllers
// and actions whose attributes are written as //axon:: annotations.
//
//	name: orders
//	types:
//	  Order:
//	    fields:
//	      - { name: id, type: int }
//	      - { name: total, type: float64, tag: 'minimum:"0"' }
//	controllers:
//	  - name: Orders
//	    annotations: ["//axon::route api/[controller]"]
//	    actions:
//	      - name: Get
//	        returns: Order
//	        annotations: ["//axon::http GET {id:int}", "//axon::response 404"]
//	        parameters:
//	          - { name: id, type: int }
package manifest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/utils"
)

// Position is the line and column of a node in its manifest file
type Position struct {
	Line   int
	Column int
}

func positionOf(node *yaml.Node) Position {
	return Position{Line: node.Line, Column: node.Column}
}

// Manifest is one decoded manifest file
type Manifest struct {
	// File is the path the manifest was read from
	File        string              `yaml:"-"`
	Name        string              `yaml:"name"`
	Types       map[string]TypeSpec `yaml:"types"`
	Controllers []ControllerSpec    `yaml:"controllers"`
	// Operations are actions without a controller
	Operations []ActionSpec `yaml:"operations"`
}

// TypeSpec declares a struct payload type
type TypeSpec struct {
	Pos    Position    `yaml:"-"`
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec is one field of a declared type. Tag is a Go struct tag body.
type FieldSpec struct {
	Pos  Position `yaml:"-"`
	Name string   `yaml:"name"`
	Type string   `yaml:"type"`
	Tag  string   `yaml:"tag"`
}

// ControllerSpec groups actions under a shared owner
type ControllerSpec struct {
	Pos         Position     `yaml:"-"`
	Name        string       `yaml:"name"`
	Annotations []Annotation `yaml:"annotations"`
	Actions     []ActionSpec `yaml:"actions"`
}

// ActionSpec declares one handler. Method and Template act as the routing
// layer's own method constraint and template; annotations may supply both.
type ActionSpec struct {
	Pos         Position          `yaml:"-"`
	Name        string            `yaml:"name"`
	Method      string            `yaml:"method"`
	Template    string            `yaml:"template"`
	Returns     string            `yaml:"returns"`
	Annotations []Annotation      `yaml:"annotations"`
	Parameters  []ParameterSpec   `yaml:"parameters"`
	RouteValues map[string]string `yaml:"route_values"`
}

// ParameterSpec is one handler parameter
type ParameterSpec struct {
	Pos         Position     `yaml:"-"`
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Annotations []Annotation `yaml:"annotations"`
}

// Annotation is an annotation entry with the position of its first line. The
// //axon:: prefix may be omitted. A literal block (|) holds one annotation per
// line; blank lines and // comments in it are skipped.
type Annotation struct {
	Text string
	Pos  Position
}

// UnmarshalYAML reads a scalar annotation and records where it was written
func (a *Annotation) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: annotation must be a string", node.Line)
	}
	a.Text = node.Value
	a.Pos = positionOf(node)
	if node.Style&yaml.LiteralStyle != 0 {
		// the block starts on the line after the indicator
		a.Pos = Position{Line: node.Line + 1}
	}
	return nil
}

// UnmarshalYAML decodes the type and records its position
func (s *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain TypeSpec
	if err := decodeStrict(node, (*plain)(s), "fields"); err != nil {
		return err
	}
	s.Pos = positionOf(node)
	return nil
}

// UnmarshalYAML decodes the field and records its position
func (f *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain FieldSpec
	if err := decodeStrict(node, (*plain)(f), "name", "type", "tag"); err != nil {
		return err
	}
	f.Pos = positionOf(node)
	return nil
}

// UnmarshalYAML decodes the controller and records its position
func (c *ControllerSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain ControllerSpec
	if err := decodeStrict(node, (*plain)(c), "name", "annotations", "actions"); err != nil {
		return err
	}
	c.Pos = positionOf(node)
	return nil
}

// UnmarshalYAML decodes the action and records its position
func (a *ActionSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain ActionSpec
	if err := decodeStrict(node, (*plain)(a),
		"name", "method", "template", "returns", "annotations", "parameters", "route_values"); err != nil {
		return err
	}
	a.Pos = positionOf(node)
	return nil
}

// UnmarshalYAML decodes the parameter and records its position
func (p *ParameterSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain ParameterSpec
	if err := decodeStrict(node, (*plain)(p), "name", "type", "annotations"); err != nil {
		return err
	}
	p.Pos = positionOf(node)
	return nil
}

// decodeStrict rejects mapping keys outside known before decoding node into out.
// Node.Decode does not honour the decoder's KnownFields setting.
func decodeStrict(node *yaml.Node, out interface{}, known ...string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(known, key.Value) {
			return fmt.Errorf("line %d: field %s not found, expected one of: %s",
				key.Line, key.Value, strings.Join(known, ", "))
		}
	}
	return node.Decode(out)
}

// Validate checks names and methods and returns every problem found
func (m *Manifest) Validate() error {
	var errs *apierrors.MultipleErrors
	add := func(err error, pos Position) {
		if err == nil {
			return
		}
		var validationErr *apierrors.ValidationError
		if errors.As(err, &validationErr) {
			err = validationErr.WithLocation(m.location(pos))
		}
		apierrors.AddToMultiple(&errs, err)
	}

	for _, name := range m.TypeNames() {
		spec := m.Types[name]
		add(utils.IsValidGoIdentifier("types."+name)(name), spec.Pos)
		add(utils.Unique("types."+name+".fields", func(f FieldSpec) string { return GoFieldName(f.Name) })(spec.Fields), spec.Pos)
		fieldName := identifier("types."+name+".fields.name", GoFieldName)
		for _, field := range spec.Fields {
			add(fieldName.Validate(field.Name), field.Pos)
			add(utils.NotEmpty("types."+name+"."+field.Name+".type")(field.Type), field.Pos)
		}
	}

	add(utils.Unique("controllers", func(c ControllerSpec) string { return controllerTypeName(c.Name) })(m.Controllers), Position{})
	controllerName := identifier("controllers.name", controllerTypeName)
	for _, controller := range m.Controllers {
		add(controllerName.Validate(controller.Name), controller.Pos)
		m.validateActions("controllers."+controller.Name, controller.Actions, controller.Pos, add)
	}
	m.validateActions("operations", m.Operations, Position{}, add)

	return errs.ErrorOrNil()
}

// identifier checks that a name is set and that goName turns it into a Go identifier
func identifier(field string, goName func(string) string) *utils.ValidatorChain[string] {
	return utils.NewValidatorChain(utils.NotEmpty(field)).
		Add(func(name string) error { return utils.IsValidGoIdentifier(field)(goName(name)) })
}

func (m *Manifest) validateActions(scope string, actions []ActionSpec, pos Position, add func(error, Position)) {
	add(utils.Unique(scope+".actions", func(a ActionSpec) string { return a.Name })(actions), pos)

	method := utils.Conditional(func(s string) bool { return s != "" }, utils.ValidateHTTPMethod(scope+".method"))
	for _, action := range actions {
		add(utils.NotEmpty(scope+".actions.name")(action.Name), action.Pos)
		add(method(strings.ToUpper(action.Method)), action.Pos)
		add(utils.Unique(scope+"."+action.Name+".parameters", func(p ParameterSpec) string { return p.Name })(action.Parameters), action.Pos)
		for _, param := range action.Parameters {
			add(utils.NotEmpty(scope+"."+action.Name+".parameters.name")(param.Name), param.Pos)
			add(utils.NotEmpty(scope+"."+action.Name+"."+param.Name+".type")(param.Type), param.Pos)
		}
	}
}

// TypeNames returns the declared type names in lexical order
func (m *Manifest) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for name := range m.Types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ActionCount returns the number of actions declared by the manifest
func (m *Manifest) ActionCount() int {
	count := len(m.Operations)
	for _, c := range m.Controllers {
		count += len(c.Actions)
	}
	return count
}

func (m *Manifest) location(pos Position) apierrors.SourceLocation {
	return apierrors.SourceLocation{File: m.File, Line: pos.Line, Column: pos.Column}
}

// GoFieldName returns the exported struct field name of a manifest field
func GoFieldName(name string) string {
	return strcase.ToCamel(name)
}

func controllerTypeName(name string) string {
	typeName := strcase.ToCamel(name)
	if !strings.HasSuffix(typeName, "Controller") {
		typeName += "Controller"
	}
	return typeName
}
