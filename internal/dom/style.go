package dom

import "strings"

// declaration is one entry of an inline style attribute. raw keeps the source
// text of declarations that were parsed and not modified so unrelated styles
// render back byte for byte.
type declaration struct {
	property string
	value    string
	priority string
	raw      string
}

func (d declaration) String() string {
	if d.raw != "" {
		return d.raw
	}
	if d.priority != "" {
		return d.property + ": " + d.value + " !" + d.priority
	}
	return d.property + ": " + d.value
}

// parseStyle splits an inline style attribute into declarations.
// Malformed segments are kept verbatim under an empty property.
func parseStyle(attr string) []declaration {
	var decls []declaration
	for _, seg := range strings.Split(attr, ";") {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			continue
		}
		name, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			decls = append(decls, declaration{raw: trimmed})
			continue
		}
		value = strings.TrimSpace(value)
		priority := ""
		if idx := strings.LastIndex(value, "!"); idx >= 0 {
			if p := strings.TrimSpace(value[idx+1:]); strings.EqualFold(p, PriorityImportant) {
				priority = PriorityImportant
				value = strings.TrimSpace(value[:idx])
			}
		}
		decls = append(decls, declaration{
			property: strings.ToLower(strings.TrimSpace(name)),
			value:    value,
			priority: priority,
			raw:      trimmed,
		})
	}
	return decls
}

// formatStyle joins decls, keeping the trailing semicolon of source when it
// had one.
func formatStyle(decls []declaration, source string) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	out := strings.Join(parts, "; ")
	if strings.HasSuffix(strings.TrimSpace(source), ";") {
		out += ";"
	}
	return out
}
