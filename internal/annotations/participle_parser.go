package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// annotationAST is the grammar root: //axon::kind arg... -Option[=value]...
type annotationAST struct {
	Kind      string         `parser:"Prefix @Word"`
	Arguments []*argumentAST `parser:"@@*"`
}

type argumentAST struct {
	Option *optionAST `parser:"  @@"`
	Value  *valueAST  `parser:"| @@"`
}

type optionAST struct {
	Name  string    `parser:"@Flag"`
	Value *valueAST `parser:"( Equals @@ )?"`
}

type valueAST struct {
	Quoted *string `parser:"  @String"`
	Word   *string `parser:"| @Word"`
}

func (v *valueAST) text() string {
	if v.Quoted != nil {
		return unquote(*v.Quoted)
	}
	return *v.Word
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*axon::`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'[^']*'`},
	{Name: "Flag", Pattern: `-[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Word", Pattern: `[^\s="'\-][^\s]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ParticipleParser parses annotations with a participle grammar and checks
// them against the schemas of its registry
type ParticipleParser struct {
	parser    *participle.Parser[annotationAST]
	registry  AnnotationRegistry
	validator SchemaValidator
}

// NewParticipleParser creates a parser using participle
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	return &ParticipleParser{
		parser: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		registry:  registry,
		validator: NewValidator(),
	}
}

// ParseAnnotation parses a single annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	ast, err := p.parser.ParseString(location.File, raw)
	if err != nil {
		return nil, syntaxError(raw, location, err)
	}

	annotationType, err := ParseAnnotationType(ast.Kind)
	if err != nil || !p.registry.IsRegistered(annotationType) {
		return nil, apierrors.NewSchemaError(ast.Kind, "unknown annotation type").
			WithLocation(location).
			WithSuggestion("Known annotations: " + strings.Join(p.knownKinds(), ", "))
	}
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, err
	}

	annotation := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        raw,
	}
	if err := p.assignArguments(annotation, schema, ast.Arguments); err != nil {
		return nil, err
	}

	if err := p.ValidateAnnotation(annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

// ValidateAnnotation converts parameter values, validates them against the
// schema and fills defaults
func (p *ParticipleParser) ValidateAnnotation(annotation *ParsedAnnotation) error {
	schema, err := p.registry.GetSchema(annotation.Type)
	if err != nil {
		return apierrors.NewSchemaError(annotation.Type.String(), err.Error()).WithLocation(annotation.Location)
	}
	if err := p.validator.TransformParameters(annotation, schema); err != nil {
		return err
	}
	if err := p.validator.Validate(annotation, schema); err != nil {
		return err
	}
	return p.validator.ApplyDefaults(annotation, schema)
}

// Registry returns the schema registry the parser validates against
func (p *ParticipleParser) Registry() AnnotationRegistry {
	return p.registry
}

func (p *ParticipleParser) assignArguments(annotation *ParsedAnnotation, schema AnnotationSchema, args []*argumentAST) error {
	position := 0
	for _, arg := range args {
		if arg.Value != nil {
			if position >= len(schema.Positional) {
				return annotationValidationError(annotation, arg.Value.text(),
					fmt.Sprintf("at most %d positional arguments", len(schema.Positional)),
					fmt.Sprintf("extra argument '%s'", arg.Value.text()),
					"Check the annotation format, e.g. "+firstExample(schema))
			}
			annotation.Parameters[schema.Positional[position]] = arg.Value.text()
			position++
			continue
		}

		name := canonicalParameterName(schema, strings.TrimPrefix(arg.Option.Name, "-"))
		if annotation.HasParameter(name) {
			return annotationValidationError(annotation, name, "a single value", "duplicate parameter",
				fmt.Sprintf("Remove the repeated -%s", name))
		}
		value, err := optionValue(annotation, schema, name, arg.Option)
		if err != nil {
			return err
		}
		annotation.Parameters[name] = value
	}
	return nil
}

// optionValue returns the explicit value of an option, or true/the default for bare flags
func optionValue(annotation *ParsedAnnotation, schema AnnotationSchema, name string, opt *optionAST) (interface{}, error) {
	if opt.Value != nil {
		return opt.Value.text(), nil
	}
	spec, ok := schema.Parameters[name]
	switch {
	case !ok:
		// reported as unknown by Validate
		return true, nil
	case spec.Type == BoolType:
		return true, nil
	case spec.DefaultValue != nil:
		return spec.DefaultValue, nil
	}
	return nil, annotationValidationError(annotation, name, spec.Type.String(), "flag without value",
		fmt.Sprintf("Use -%s=<value>", name))
}

// canonicalParameterName matches option names case-insensitively against the schema
func canonicalParameterName(schema AnnotationSchema, name string) string {
	if _, ok := schema.Parameters[name]; ok {
		return name
	}
	for known := range schema.Parameters {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return name
}

func (p *ParticipleParser) knownKinds() []string {
	types := p.registry.ListTypes()
	kinds := make([]string, len(types))
	for i, t := range types {
		kinds[i] = t.String()
	}
	return kinds
}

func syntaxError(raw string, location SourceLocation, err error) error {
	var perr participle.Error
	token := ""
	if errors.As(err, &perr) {
		pos := perr.Position()
		if pos.Column > 0 {
			location.Column = pos.Column
			if pos.Offset < len(raw) {
				if rest := strings.Fields(raw[pos.Offset:]); len(rest) > 0 {
					token = rest[0]
				}
			}
		}
	}

	message := "invalid annotation"
	switch {
	case !strings.HasPrefix(strings.ReplaceAll(raw, " ", ""), "//axon::"):
		message = "invalid annotation prefix"
	case strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(raw, " ", ""), "//axon::")) == "":
		message = "missing annotation type"
	case strings.Count(raw, `"`)%2 == 1:
		message = "unterminated quoted string"
	}

	return apierrors.NewSyntaxErrorWithToken(message, token).
		WithLocation(location).
		WithCause(err).
		WithSuggestion(syntaxSuggestion(message))
}

func syntaxSuggestion(message string) string {
	switch message {
	case "invalid annotation prefix":
		return "Annotation must start with '//axon::' (note the double colon)"
	case "missing annotation type":
		return "Try: //axon::http GET {id} or //axon::from_query"
	case "unterminated quoted string":
		return "Make sure quoted strings are properly closed with matching quotes"
	default:
		return "Arguments come first, options use '-Name=Value' or '-Flag' for booleans"
	}
}
