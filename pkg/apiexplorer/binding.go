package apiexplorer

import (
	"fmt"
	"strings"
)

// BindingSource identifies where a parameter's value originates at request time
type BindingSource int

const (
	// SourceNone means no source has been resolved yet
	SourceNone BindingSource = iota
	SourcePath
	SourceQuery
	SourceHeader
	SourceBody
	SourceForm
	SourceFormFile
	SourceService
	SourceCustom
)

var bindingSourceNames = map[BindingSource]string{
	SourceNone:     "",
	SourcePath:     "Path",
	SourceQuery:    "Query",
	SourceHeader:   "Header",
	SourceBody:     "Body",
	SourceForm:     "Form",
	SourceFormFile: "FormFile",
	SourceService:  "Service",
	SourceCustom:   "Custom",
}

// String returns the display name of the source
func (s BindingSource) String() string {
	if name, ok := bindingSourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BindingSource(%d)", int(s))
}

// MarshalText encodes the source by name so JSON and YAML output stay readable
func (s BindingSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a source name
func (s *BindingSource) UnmarshalText(text []byte) error {
	parsed, err := ParseBindingSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseBindingSource maps a source name to its value, case-insensitively.
// "route" is accepted as an alias for Path and "services" for Service.
func ParseBindingSource(name string) (BindingSource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return SourceNone, nil
	case "path", "route":
		return SourcePath, nil
	case "query":
		return SourceQuery, nil
	case "header":
		return SourceHeader, nil
	case "body":
		return SourceBody, nil
	case "form":
		return SourceForm, nil
	case "formfile", "file":
		return SourceFormFile, nil
	case "service", "services":
		return SourceService, nil
	case "custom":
		return SourceCustom, nil
	}
	return SourceNone, fmt.Errorf("unknown binding source %q", name)
}

// IsFromRequest reports whether the value is read from the HTTP request
func (s BindingSource) IsFromRequest() bool {
	switch s {
	case SourcePath, SourceQuery, SourceHeader, SourceBody, SourceForm, SourceFormFile:
		return true
	}
	return false
}

// CanAcceptDataFrom reports whether a parameter bound to s accepts data bound to other.
// FormFile is the file flavour of Form, so the two accept each other.
func (s BindingSource) CanAcceptDataFrom(other BindingSource) bool {
	if s == other {
		return true
	}
	return s.isForm() && other.isForm()
}

func (s BindingSource) isForm() bool {
	return s == SourceForm || s == SourceFormFile
}
