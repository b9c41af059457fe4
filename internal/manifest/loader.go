package manifest

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/apiexplorer/internal/annotations"
	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/internal/utils"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

// Options configures a Loader
type Options struct {
	// Registry holds the annotation schemas, the built-in ones when nil
	Registry annotations.AnnotationRegistry
	// Diagnostics receives progress output; nil discards it
	Diagnostics *utils.DiagnosticSystem
	// Walk selects files when a directory is loaded
	Walk *utils.FileWalkOptions
}

// Loader reads manifests and turns them into operation declarations
type Loader struct {
	registry    annotations.AnnotationRegistry
	parser      annotations.ParserEngine
	processor   *utils.FileProcessor
	walk        utils.FileWalkOptions
	diagnostics *utils.DiagnosticSystem
}

// NewLoader creates a loader
func NewLoader(opts Options) *Loader {
	registry := opts.Registry
	if registry == nil {
		registry = annotations.DefaultRegistry()
	}
	walk := utils.DefaultWalkOptions()
	if opts.Walk != nil {
		walk = *opts.Walk
	}
	return &Loader{
		registry:    registry,
		parser:      annotations.NewParser(registry),
		processor:   utils.NewFileProcessor(),
		walk:        walk,
		diagnostics: opts.Diagnostics,
	}
}

// LoadFile reads and validates the manifest at path
func (l *Loader) LoadFile(path string) (*Manifest, error) {
	data, err := l.processor.Reader().ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(data, path)
}

// Load decodes and validates a manifest. file is used in error locations.
func (l *Loader) Load(data []byte, file string) (*Manifest, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	m := &Manifest{}
	if err := decoder.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, apierrors.WrapParseError(file, err).
			WithLocation(apierrors.SourceLocation{File: file}).
			WithSuggestion("Check the manifest layout: name, types, controllers, operations")
	}
	m.File = file

	if err := m.Validate(); err != nil {
		return nil, err
	}
	l.diagnostics.Debug("Loaded %s: %d types, %d actions", file, len(m.Types), m.ActionCount())
	return m, nil
}

// LoadPaths loads every manifest named by paths; directories are walked.
// Manifests that fail are skipped and their errors returned together.
func (l *Loader) LoadPaths(paths ...string) ([]*Manifest, error) {
	files, err := l.processor.ExpandPaths(paths, l.walk)
	if err != nil {
		return nil, err
	}

	var (
		manifests []*Manifest
		errs      *apierrors.MultipleErrors
	)
	for _, file := range files {
		m, err := l.LoadFile(file)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		manifests = append(manifests, m)
	}
	return manifests, errs.ErrorOrNil()
}

// Declarations turns m into operation declarations in manifest order:
// controller actions first, then free operations. Actions that fail are
// left out and their errors returned together.
func (l *Loader) Declarations(m *Manifest) ([]apiexplorer.OperationDeclaration, error) {
	types := newTypeBuilder(m)
	converter := annotations.NewConverter(l.registry, types.resolve)

	var (
		decls []apiexplorer.OperationDeclaration
		errs  *apierrors.MultipleErrors
	)
	apierrors.AddToMultiple(&errs, types.buildAll())

	for _, controller := range m.Controllers {
		ownerAttrs, err := l.attributes(m, converter, controller.Annotations, annotations.OwnerTarget, nil)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		owner := controllerType(controller.Name)
		for _, action := range controller.Actions {
			decl, err := l.declaration(m, types, converter, action, owner, ownerAttrs)
			if err != nil {
				apierrors.AddToMultiple(&errs, err)
				continue
			}
			decls = append(decls, decl)
		}
	}

	for _, action := range m.Operations {
		decl, err := l.declaration(m, types, converter, action, nil, nil)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		decls = append(decls, decl)
	}

	return decls, errs.ErrorOrNil()
}

// Source loads paths into a static declaration source. The source holds every
// declaration that could be built even when an error is returned.
func (l *Loader) Source(paths ...string) (*apiexplorer.StaticSource, error) {
	source := apiexplorer.NewStaticSource()

	var errs *apierrors.MultipleErrors
	manifests, err := l.LoadPaths(paths...)
	apierrors.AddToMultiple(&errs, err)

	l.diagnostics.Verbose("Declaring operations from %d manifests", len(manifests))
	l.diagnostics.Indent()
	defer l.diagnostics.Unindent()
	for _, m := range manifests {
		decls, err := l.Declarations(m)
		apierrors.AddToMultiple(&errs, err)
		for _, decl := range decls {
			source.Add(decl)
		}
		l.diagnostics.Verbose("%s: %d operations declared", m.File, len(decls))
	}
	return source, errs.ErrorOrNil()
}

func (l *Loader) declaration(m *Manifest, types *typeBuilder, converter *annotations.Converter,
	action ActionSpec, owner reflect.Type, ownerAttrs []apiexplorer.Attribute) (apiexplorer.OperationDeclaration, error) {
	var errs *apierrors.MultipleErrors

	attrs, err := l.attributes(m, converter, action.Annotations, annotations.ActionTarget, nil)
	apierrors.AddToMultiple(&errs, err)

	handler := apiexplorer.Handler{
		Name:            action.Name,
		OwnerType:       owner,
		Attributes:      attrs,
		OwnerAttributes: ownerAttrs,
	}

	if action.Returns != "" {
		returns, err := types.resolve(action.Returns)
		if err != nil {
			apierrors.AddToMultiple(&errs, locate(err, m.location(action.Pos)))
		}
		handler.Returns = returns
	}

	for _, param := range action.Parameters {
		paramType, err := types.resolve(param.Type)
		if err != nil {
			apierrors.AddToMultiple(&errs, locate(err, m.location(param.Pos)))
			continue
		}
		paramAttrs, err := l.attributes(m, converter, param.Annotations, annotations.ParameterTarget, paramType)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		handler.Parameters = append(handler.Parameters, apiexplorer.ParameterDeclaration{
			Name:       param.Name,
			Type:       paramType,
			Attributes: paramAttrs,
		})
	}

	if err := errs.ErrorOrNil(); err != nil {
		return apiexplorer.OperationDeclaration{}, err
	}

	var routeValues map[string]string
	if len(action.RouteValues) > 0 {
		routeValues = make(map[string]string, len(action.RouteValues))
		for k, v := range action.RouteValues {
			routeValues[k] = v
		}
	}
	return apiexplorer.OperationDeclaration{
		HTTPMethod:    strings.ToUpper(action.Method),
		RouteTemplate: action.Template,
		Handler:       handler,
		RouteValues:   routeValues,
	}, nil
}

func (l *Loader) attributes(m *Manifest, converter *annotations.Converter, anns []Annotation,
	target annotations.Target, paramType reflect.Type) ([]apiexplorer.Attribute, error) {
	var (
		parsed []*annotations.ParsedAnnotation
		errs   *apierrors.MultipleErrors
	)
	for _, a := range anns {
		p, err := annotations.ParseAll(l.parser, annotationLines(a.Text), m.location(a.Pos))
		apierrors.AddToMultiple(&errs, err)
		parsed = append(parsed, p...)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return converter.Attributes(parsed, target, paramType)
}

// annotationLines splits an annotation entry into one line per annotation.
// The //axon:: prefix is added to lines written without it; other // lines
// are comments and stay as they are.
func annotationLines(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "//") {
			line = "//axon::" + line
		}
		lines[i] = line
	}
	return lines
}
