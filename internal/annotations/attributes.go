package annotations

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

var durationType = reflect.TypeOf(time.Duration(0))

// TypeResolver resolves a payload type name used by //axon::response
type TypeResolver func(name string) (reflect.Type, error)

// Converter turns parsed annotations into model attributes
type Converter struct {
	registry    AnnotationRegistry
	resolveType TypeResolver
}

// NewConverter creates a converter checking targets against registry.
// A nil resolver rejects every response annotation that names a type.
func NewConverter(registry AnnotationRegistry, resolve TypeResolver) *Converter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Converter{registry: registry, resolveType: resolve}
}

// Attributes converts annotations attached to target. paramType is the type of
// the annotated parameter and is only used for ParameterTarget.
func (c *Converter) Attributes(annotations []*ParsedAnnotation, target Target, paramType reflect.Type) ([]apiexplorer.Attribute, error) {
	var errs *apierrors.MultipleErrors
	attrs := make([]apiexplorer.Attribute, 0, len(annotations))

	for _, annotation := range annotations {
		schema, err := c.registry.GetSchema(annotation.Type)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		if !schema.Targets.Allows(target) {
			apierrors.AddToMultiple(&errs, apierrors.NewSchemaError(annotation.Type.String(),
				fmt.Sprintf("cannot be attached to a %s", target)).
				WithLocation(annotation.Location).
				WithSuggestion(fmt.Sprintf("Allowed on: %s", schema.Targets)))
			continue
		}

		attr, err := c.attribute(annotation, paramType)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		attrs = append(attrs, attr)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (c *Converter) attribute(a *ParsedAnnotation, paramType reflect.Type) (apiexplorer.Attribute, error) {
	switch a.Type {
	case RouteAnnotation:
		return apiexplorer.Route{Template: a.GetString("template")}, nil
	case HTTPAnnotation:
		return apiexplorer.HTTPMethod{
			Method:   strings.ToUpper(a.GetString("method")),
			Template: a.GetString("template"),
			Name:     a.GetString("Name"),
		}, nil
	case FromPathAnnotation:
		return apiexplorer.FromPath{Name: a.GetString("name")}, nil
	case FromQueryAnnotation:
		return apiexplorer.FromQuery{Name: a.GetString("name")}, nil
	case FromHeaderAnnotation:
		return apiexplorer.FromHeader{Name: a.GetString("name")}, nil
	case FromFormAnnotation:
		return apiexplorer.FromForm{Name: a.GetString("name")}, nil
	case FromBodyAnnotation:
		return apiexplorer.FromBody{}, nil
	case FromServicesAnnotation:
		return apiexplorer.FromServices{}, nil
	case FromCustomAnnotation:
		return apiexplorer.FromCustom{Name: a.GetString("name")}, nil
	case RequiredAnnotation:
		return apiexplorer.Required{}, nil
	case DisplayAnnotation:
		return apiexplorer.DisplayName{Name: a.GetString("name")}, nil
	case DefaultAnnotation:
		value, err := CoerceValue(a.GetString("value"), paramType)
		if err != nil {
			return nil, annotationValidationError(a, "value", fmt.Sprintf("value of type %s", paramType), a.GetString("value"), err.Error())
		}
		return apiexplorer.DefaultValue{Value: value}, nil
	case ProducesAnnotation:
		return apiexplorer.Produces{MediaTypes: a.GetStringSlice("media")}, nil
	case ConsumesAnnotation:
		return apiexplorer.Consumes{MediaTypes: a.GetStringSlice("media")}, nil
	case ResponseAnnotation:
		return c.responseAttribute(a)
	case ExplorerAnnotation:
		return apiexplorer.APIExplorerSettings{
			GroupName: a.GetString("Group"),
			IgnoreAPI: a.GetBool("Ignore"),
		}, nil
	default:
		return nil, apierrors.NewSchemaError(a.Type.String(), "annotation has no attribute form").WithLocation(a.Location)
	}
}

func (c *Converter) responseAttribute(a *ParsedAnnotation) (apiexplorer.Attribute, error) {
	attr := apiexplorer.ProducesResponseType{StatusCode: a.GetInt("status")}
	name := a.GetString("type")
	if name == "" {
		return attr, nil
	}
	if c.resolveType == nil {
		return nil, annotationValidationError(a, "type", "a known type", name, "No type resolver is configured")
	}
	t, err := c.resolveType(name)
	if err != nil {
		return nil, annotationValidationError(a, "type", "a known type", name, err.Error())
	}
	attr.Type = t
	return attr, nil
}

// CoerceValue converts raw to a value of t for scalar kinds; other types keep
// the raw string. A nil t also keeps the string.
func CoerceValue(raw string, t reflect.Type) (any, error) {
	if t == nil {
		return raw, nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == durationType {
		return time.ParseDuration(raw)
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	default:
		return raw, nil
	}
	return v.Interface(), nil
}
