package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// Combine prefixes template with a controller-level prefix.
// Templates starting with "~/" ignore the prefix.
func Combine(prefix, template string) string {
	if strings.HasPrefix(template, "~/") {
		return strings.TrimPrefix(template, "~")
	}
	prefix = strings.Trim(prefix, "/")
	template = strings.Trim(template, "/")
	switch {
	case prefix == "":
		return template
	case template == "":
		return prefix
	}
	return prefix + "/" + template
}

var tokenRegex = regexp.MustCompile(`\[([a-zA-Z_][a-zA-Z0-9_]*)\]`)

// ReplaceTokens substitutes [key] tokens such as [controller] and [action]
// with route values. Keys match case-insensitively; a missing value is an error.
func ReplaceTokens(template string, values map[string]string) (string, error) {
	var missing []string
	out := tokenRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		for k, v := range values {
			if strings.EqualFold(k, key) {
				return v
			}
		}
		missing = append(missing, key)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("no route value for token(s) %s in %q", strings.Join(missing, ", "), template)
	}
	return out, nil
}

var colonParamRegex = regexp.MustCompile(`([:*])([a-zA-Z_][a-zA-Z0-9_]*)(\?)?`)

// FromColonSyntax converts gin, echo and fiber route syntax to template syntax.
// Converts: /users/:id -> /users/{id}
// Converts: /files/*path -> /files/{*path}
// Converts: /users/:id? -> /users/{id?}
// A bare trailing "*" (echo, fiber) becomes {*wildcard}.
func FromColonSyntax(path string) string {
	converted := colonParamRegex.ReplaceAllStringFunc(path, func(match string) string {
		groups := colonParamRegex.FindStringSubmatch(match)
		if groups[1] == "*" {
			return "{*" + groups[2] + "}"
		}
		return "{" + groups[2] + groups[3] + "}"
	})
	if strings.HasSuffix(converted, "/*") {
		converted = strings.TrimSuffix(converted, "*") + "{*wildcard}"
	}
	return converted
}
