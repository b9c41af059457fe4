package routing

import (
	"fmt"
	"strings"
)

// PartKind represents the type of template part
type PartKind int

const (
	StaticPart PartKind = iota
	ParameterPart
)

// ConstraintToken is one inline constraint of a placeholder, e.g. range(1,10)
type ConstraintToken struct {
	Name string
	Args []string
}

// String renders the token as written in a template
func (c ConstraintToken) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + "(" + strings.Join(c.Args, ",") + ")"
}

// Part represents a single part of a route template
type Part struct {
	Kind PartKind
	// Value is the literal text for static parts and the name for parameters
	Value       string
	Constraints []ConstraintToken
	Optional    bool
	CatchAll    bool
	Default     string
	HasDefault  bool
}

// Placeholder is a parameter part of a template
type Placeholder = Part

// Template is a parsed route template
type Template struct {
	Raw   string
	Parts []Part
}

// Parse parses a route template such as "items/{id:int}/{*rest}".
// Supported placeholder forms: {name}, {name:c1:c2(arg)}, {name?}, {name=default}, {*name}.
func Parse(template string) (Template, error) {
	t := Template{Raw: template}
	seen := make(map[string]bool)

	i := 0
	for i < len(template) {
		if template[i] == '}' {
			return Template{}, fmt.Errorf("unexpected '}' at offset %d in %q", i, template)
		}
		if template[i] != '{' {
			// Static part - collect consecutive static characters
			start := i
			for i < len(template) && template[i] != '{' && template[i] != '}' {
				i++
			}
			t.Parts = append(t.Parts, Part{Kind: StaticPart, Value: template[start:i]})
			continue
		}

		// Find the closing brace, ignoring braces inside constraint arguments
		j, depth := i+1, 0
		for ; j < len(template); j++ {
			switch template[j] {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			}
			if template[j] == '}' && depth == 0 {
				break
			}
		}
		if j >= len(template) {
			return Template{}, fmt.Errorf("unclosed '{' at offset %d in %q", i, template)
		}

		part, err := parsePlaceholder(template[i+1 : j])
		if err != nil {
			return Template{}, fmt.Errorf("%q: %w", template, err)
		}
		key := strings.ToLower(part.Value)
		if seen[key] {
			return Template{}, fmt.Errorf("%q: placeholder %q appears more than once", template, part.Value)
		}
		seen[key] = true
		t.Parts = append(t.Parts, part)
		i = j + 1
	}

	for idx, part := range t.Parts {
		if part.CatchAll && idx != len(t.Parts)-1 {
			return Template{}, fmt.Errorf("%q: catch-all placeholder %q must be the last segment", template, part.Value)
		}
	}
	return t, nil
}

func parsePlaceholder(content string) (Part, error) {
	part := Part{Kind: ParameterPart}
	if strings.HasPrefix(content, "*") {
		part.CatchAll = true
		content = strings.TrimLeft(content, "*")
	}

	// Default value and optional marker sit outside constraint arguments
	body, defaultValue, hasDefault := cutOutside(content, '=')
	if hasDefault {
		part.Default = defaultValue
		part.HasDefault = true
	} else if strings.HasSuffix(body, "?") {
		part.Optional = true
		body = strings.TrimSuffix(body, "?")
	}

	segments := splitOutside(body, ':')
	part.Value = strings.TrimSpace(segments[0])
	if part.Value == "" {
		return Part{}, fmt.Errorf("placeholder {%s} has no name", content)
	}
	if strings.ContainsAny(part.Value, "/{}()?*=") {
		return Part{}, fmt.Errorf("invalid placeholder name %q", part.Value)
	}
	if part.Optional && part.CatchAll {
		return Part{}, fmt.Errorf("catch-all placeholder %q cannot be optional", part.Value)
	}

	for _, seg := range segments[1:] {
		token, err := parseConstraintToken(seg)
		if err != nil {
			return Part{}, fmt.Errorf("placeholder %q: %w", part.Value, err)
		}
		part.Constraints = append(part.Constraints, token)
	}
	return part, nil
}

func parseConstraintToken(seg string) (ConstraintToken, error) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return ConstraintToken{}, fmt.Errorf("empty constraint")
	}
	open := strings.IndexByte(seg, '(')
	if open < 0 {
		return ConstraintToken{Name: seg}, nil
	}
	if !strings.HasSuffix(seg, ")") {
		return ConstraintToken{}, fmt.Errorf("constraint %q is missing ')'", seg)
	}
	token := ConstraintToken{Name: seg[:open]}
	if args := seg[open+1 : len(seg)-1]; args != "" {
		token.Args = strings.Split(args, ",")
	}
	return token, nil
}

// cutOutside is strings.Cut that ignores sep inside parentheses
func cutOutside(s string, sep byte) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// splitOutside is strings.Split that ignores sep inside parentheses
func splitOutside(s string, sep byte) []string {
	var parts []string
	for {
		before, after, found := cutOutside(s, sep)
		parts = append(parts, before)
		if !found {
			return parts
		}
		s = after
	}
}

// Placeholders returns the parameter parts in template order
func (t Template) Placeholders() []Placeholder {
	var placeholders []Placeholder
	for _, part := range t.Parts {
		if part.Kind == ParameterPart {
			placeholders = append(placeholders, part)
		}
	}
	return placeholders
}

// Placeholder looks a placeholder up by name, case-insensitively
func (t Template) Placeholder(name string) (Placeholder, bool) {
	for _, part := range t.Parts {
		if part.Kind == ParameterPart && strings.EqualFold(part.Value, name) {
			return part, true
		}
	}
	return Part{}, false
}

// HasPlaceholder reports whether name matches a placeholder, case-insensitively
func (t Template) HasPlaceholder(name string) bool {
	_, ok := t.Placeholder(name)
	return ok
}

// RelativePath renders the template without a leading slash and with
// placeholders reduced to {name}
func (t Template) RelativePath() string {
	var b strings.Builder
	for _, part := range t.Parts {
		if part.Kind == StaticPart {
			b.WriteString(part.Value)
			continue
		}
		b.WriteString("{")
		b.WriteString(part.Value)
		b.WriteString("}")
	}
	return strings.TrimLeft(b.String(), "/")
}
