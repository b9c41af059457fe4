package annotations

import (
	"fmt"
	"strings"
)

// RouteAnnotationSchema defines the schema for //axon::route annotations
var RouteAnnotationSchema = AnnotationSchema{
	Type:        RouteAnnotation,
	Description: "Supplies a route template; on a controller it prefixes every action template",
	Targets:     ActionTarget | OwnerTarget,
	Positional:  []string{"template"},
	Parameters: map[string]ParameterSpec{
		"template": TemplateParameterSpec(true),
	},
	Examples: []string{
		"//axon::route api/[controller]",
		"//axon::route {id:int}",
	},
}

// HTTPAnnotationSchema defines the schema for //axon::http annotations
var HTTPAnnotationSchema = AnnotationSchema{
	Type:        HTTPAnnotation,
	Description: "Constrains an action (or every action of a controller) to an HTTP method",
	Targets:     ActionTarget | OwnerTarget,
	Positional:  []string{"method", "template"},
	Parameters: map[string]ParameterSpec{
		"method":   HTTPMethodParameterSpec(),
		"template": TemplateParameterSpec(false),
		"Name": {
			Type:        StringType,
			Description: "Route name, used as the operation id",
			Validator:   ValidateNotEmpty,
		},
	},
	Examples: []string{
		"//axon::http GET",
		"//axon::http GET {id:int}",
		"//axon::http DELETE {id} -Name=RemoveOrder",
	},
}

func bindingSchema(t AnnotationType, description string, named bool) AnnotationSchema {
	schema := AnnotationSchema{
		Type:        t,
		Description: description,
		Targets:     ParameterTarget,
		Parameters:  map[string]ParameterSpec{},
		Examples:    []string{"//axon::" + t.String()},
	}
	if named {
		schema.Positional = []string{"name"}
		schema.Parameters["name"] = NameParameterSpec("Name the value is bound under, defaults to the parameter name")
		schema.Examples = append(schema.Examples, "//axon::"+t.String()+" X-Request-Id")
	}
	return schema
}

var (
	FromPathAnnotationSchema     = bindingSchema(FromPathAnnotation, "Binds a parameter to a route placeholder", true)
	FromQueryAnnotationSchema    = bindingSchema(FromQueryAnnotation, "Binds a parameter to a query string value", true)
	FromHeaderAnnotationSchema   = bindingSchema(FromHeaderAnnotation, "Binds a parameter to a request header", true)
	FromFormAnnotationSchema     = bindingSchema(FromFormAnnotation, "Binds a parameter to a form field", true)
	FromBodyAnnotationSchema     = bindingSchema(FromBodyAnnotation, "Binds a parameter to the request body", false)
	FromServicesAnnotationSchema = bindingSchema(FromServicesAnnotation, "Marks a parameter as injected by the host", false)
	FromCustomAnnotationSchema   = bindingSchema(FromCustomAnnotation, "Binds a parameter through a host-specific binder", true)
)

// RequiredAnnotationSchema defines the schema for //axon::required annotations
var RequiredAnnotationSchema = AnnotationSchema{
	Type:        RequiredAnnotation,
	Description: "Marks a parameter as required",
	Targets:     ParameterTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//axon::required"},
}

// DisplayAnnotationSchema defines the schema for //axon::display annotations
var DisplayAnnotationSchema = AnnotationSchema{
	Type:        DisplayAnnotation,
	Description: "Overrides the display name of a parameter",
	Targets:     ParameterTarget,
	Positional:  []string{"name"},
	Parameters: map[string]ParameterSpec{
		"name": {
			Type:        StringType,
			Required:    true,
			Description: "Display name",
			Validator:   ValidateNotEmpty,
		},
	},
	Examples: []string{`//axon::display "Order number"`},
}

// DefaultAnnotationSchema defines the schema for //axon::default annotations
var DefaultAnnotationSchema = AnnotationSchema{
	Type:        DefaultAnnotation,
	Description: "Declares the value used when the request omits the parameter",
	Targets:     ParameterTarget,
	Positional:  []string{"value"},
	Parameters: map[string]ParameterSpec{
		"value": {
			Type:        StringType,
			Required:    true,
			Description: "Default value, converted to the parameter type",
		},
	},
	Examples: []string{"//axon::default 20", `//axon::default "created desc"`},
}

// ProducesAnnotationSchema defines the schema for //axon::produces annotations
var ProducesAnnotationSchema = AnnotationSchema{
	Type:        ProducesAnnotation,
	Description: "Restricts the response media types of an operation",
	Targets:     ActionTarget | OwnerTarget,
	Positional:  []string{"media"},
	Parameters: map[string]ParameterSpec{
		"media": MediaTypesParameterSpec(),
	},
	Examples: []string{"//axon::produces application/json", "//axon::produces application/json,text/xml"},
}

// ConsumesAnnotationSchema defines the schema for //axon::consumes annotations
var ConsumesAnnotationSchema = AnnotationSchema{
	Type:        ConsumesAnnotation,
	Description: "Restricts the request media types of an operation",
	Targets:     ActionTarget | OwnerTarget,
	Positional:  []string{"media"},
	Parameters: map[string]ParameterSpec{
		"media": MediaTypesParameterSpec(),
	},
	Examples: []string{"//axon::consumes application/json"},
}

// ResponseAnnotationSchema defines the schema for //axon::response annotations
var ResponseAnnotationSchema = AnnotationSchema{
	Type:        ResponseAnnotation,
	Description: "Declares a response status code and payload type",
	Targets:     ActionTarget | OwnerTarget,
	Positional:  []string{"status", "type"},
	Parameters: map[string]ParameterSpec{
		"status": {
			Type:        IntType,
			Required:    true,
			Description: "HTTP status code",
			Validator:   ValidateStatusCode,
		},
		"type": {
			Type:        StringType,
			Description: "Payload type name, omitted for responses without a body",
			Validator:   ValidateNotEmpty,
		},
	},
	Examples: []string{"//axon::response 200 Order", "//axon::response 204", "//axon::response 400 ProblemDetails"},
}

// ExplorerAnnotationSchema defines the schema for //axon::explorer annotations
var ExplorerAnnotationSchema = AnnotationSchema{
	Type:        ExplorerAnnotation,
	Description: "Controls the visibility and group of an operation",
	Targets:     ActionTarget | OwnerTarget,
	Parameters: map[string]ParameterSpec{
		"Group": {
			Type:        StringType,
			Description: "Group the operation is listed under",
			Validator:   ValidateNotEmpty,
		},
		"Ignore": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Hides the operation from the description",
		},
	},
	Validators: []CustomValidator{ValidateExplorerParameters},
	Examples: []string{
		"//axon::explorer -Group=v1",
		"//axon::explorer -Ignore",
	},
}

// ValidateExplorerParameters requires at least one setting
func ValidateExplorerParameters(annotation *ParsedAnnotation) error {
	if !annotation.HasParameter("Group") && !annotation.HasParameter("Ignore") {
		return fmt.Errorf("explorer annotation requires -Group or -Ignore")
	}
	return nil
}

// ValidateHTTPParameters rejects quoted templates containing whitespace
func ValidateHTTPParameters(annotation *ParsedAnnotation) error {
	template := annotation.GetString("template")
	if strings.ContainsAny(template, " \t") {
		return fmt.Errorf("route template must not contain whitespace, got '%s'", template)
	}
	return nil
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type, err)
		}
	}
	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		RouteAnnotationSchema,
		HTTPAnnotationSchema,
		FromPathAnnotationSchema,
		FromQueryAnnotationSchema,
		FromHeaderAnnotationSchema,
		FromFormAnnotationSchema,
		FromBodyAnnotationSchema,
		FromServicesAnnotationSchema,
		FromCustomAnnotationSchema,
		RequiredAnnotationSchema,
		DisplayAnnotationSchema,
		DefaultAnnotationSchema,
		ProducesAnnotationSchema,
		ConsumesAnnotationSchema,
		ResponseAnnotationSchema,
		ExplorerAnnotationSchema,
	}
}

func init() {
	HTTPAnnotationSchema.Validators = []CustomValidator{ValidateHTTPParameters}
}
