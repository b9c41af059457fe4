package annotations

import (
	"strings"

	apierrors "github.com/toyz/apiexplorer/internal/errors"
)

// ParserEngine interface defines the core parsing functionality
type ParserEngine interface {
	ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error)
	ValidateAnnotation(annotation *ParsedAnnotation) error
}

// NewParser returns the participle-based parser over registry, or over the
// built-in schemas when registry is nil
func NewParser(registry AnnotationRegistry) ParserEngine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return NewParticipleParser(registry)
}

// IsAnnotation reports whether a comment line is an //axon:: annotation
func IsAnnotation(comment string) bool {
	trimmed := strings.TrimSpace(comment)
	if !strings.HasPrefix(trimmed, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(trimmed[2:]), "axon::")
}

// ParseAll parses every annotation in comments. Lines that are not annotations
// are skipped; the location line advances with the comment index when set.
// All parse failures are collected and returned together.
func ParseAll(engine ParserEngine, comments []string, location SourceLocation) ([]*ParsedAnnotation, error) {
	var (
		parsed []*ParsedAnnotation
		errs   *apierrors.MultipleErrors
	)
	for i, comment := range comments {
		if !IsAnnotation(comment) {
			continue
		}
		loc := location
		if loc.Line > 0 {
			loc.Line += i
		}
		annotation, err := engine.ParseAnnotation(comment, loc)
		if err != nil {
			apierrors.AddToMultiple(&errs, err)
			continue
		}
		parsed = append(parsed, annotation)
	}
	return parsed, errs.ErrorOrNil()
}
