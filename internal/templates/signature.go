package templates

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/toyz/mockable/internal/models"
)

// NormalizeParams names unnamed and blank parameters p0, p1, ... after their
// position and renames parameters that would shadow a reserved identifier,
// such as an import qualifier used in the forwarding body
func NormalizeParams(params []models.Param, reserved func(string) bool) []models.Param {
	taken := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name != "" && p.Name != "_" {
			taken[p.Name] = true
		}
	}

	out := make([]models.Param, len(params))
	for i, p := range params {
		name := p.Name
		switch {
		case name == "" || name == "_":
			name = "p" + strconv.Itoa(i)
		case reserved != nil && reserved(name):
			name += "_"
		default:
			out[i] = p
			continue
		}
		for taken[name] || token.IsKeyword(name) || (reserved != nil && reserved(name)) {
			name += "_"
		}
		taken[name] = true
		p.Name = name
		out[i] = p
	}
	return out
}

// RenderParams renders a parameter list without parentheses: "x *int, ys ...string"
func RenderParams(params []models.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Kind == models.PassVariadic {
			parts[i] = p.Name + " ..." + p.Type
		} else {
			parts[i] = p.Name + " " + p.Type
		}
	}
	return strings.Join(parts, ", ")
}

// RenderResults renders a result list: "", "T" or "(T1, T2)"
func RenderResults(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return results[0]
	default:
		return "(" + strings.Join(results, ", ") + ")"
	}
}

// RenderDeclaration renders the method signature shared by the interface
// member and the forwarding method: "Name(params) results"
func RenderDeclaration(fact models.MethodFact) string {
	decl := fact.Name + "(" + RenderParams(fact.Params) + ")"
	if results := RenderResults(fact.Results); results != "" {
		decl += " " + results
	}
	return decl
}

// RenderArguments renders the forwarded argument list, spreading a variadic tail
func RenderArguments(params []models.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Kind == models.PassVariadic {
			parts[i] = p.Name + "..."
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}

// RenderCallSite renders the forwarded call: "qualifier.Name[TypeArgs](args)"
func RenderCallSite(fact models.MethodFact) string {
	var b strings.Builder
	if fact.Qualifier != "" {
		b.WriteString(fact.Qualifier)
		b.WriteByte('.')
	}
	b.WriteString(fact.Name)
	b.WriteString(fact.TypeParams.Args())
	b.WriteByte('(')
	b.WriteString(RenderArguments(fact.Params))
	b.WriteByte(')')
	return b.String()
}

// RenderDeprecation renders the deprecation paragraph as comment lines
func RenderDeprecation(fact models.MethodFact) []string {
	if !fact.IsDeprecated() {
		return nil
	}
	text := strings.TrimRight(fact.Deprecated, "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if line = strings.TrimRight(line, " \t"); line == "" {
			out[i] = "//"
		} else {
			out[i] = "// " + line
		}
	}
	return out
}
