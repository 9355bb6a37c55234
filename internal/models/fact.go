package models

import (
	"go/token"
	"strings"
)

// Param is a single function parameter
type Param struct {
	Name string
	Type string // for variadic params this is the element type
	Kind PassingKind
}

// MethodFact is the rendered-ready description of one wrappable function
type MethodFact struct {
	Name       string
	Owner      string // identity of the owning GenerationTarget
	Qualifier  string // placeholder of the declaring package, empty for same-package calls
	Params     []Param
	Results    []string
	TypeParams TypeParams
	Imports    []PackageRef // packages behind the "$N" placeholders in the fields above
	Deprecated string       // the "Deprecated:" paragraph from the doc comment, if any
	Position   token.Position
}

// SignatureKey is the structural identity of a fact used for deduplication
type SignatureKey struct {
	Owner  string
	Name   string
	Params string
	Arity  int
}

// Key returns the structural signature key of the fact
func (f MethodFact) Key() SignatureKey {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = CanonicalText(p.Type, f.Imports)
		if p.Kind == PassVariadic {
			types[i] = "..." + types[i]
		}
	}
	return SignatureKey{
		Owner:  f.Owner,
		Name:   f.Name,
		Params: strings.Join(types, ","),
		Arity:  len(f.Params),
	}
}

// ReturnsVoid reports whether the function has no results
func (f MethodFact) ReturnsVoid() bool {
	return len(f.Results) == 0
}

// IsGeneric reports whether the function declares type parameters
func (f MethodFact) IsGeneric() bool {
	return len(f.TypeParams) > 0
}

// IsVariadic reports whether the last parameter is variadic
func (f MethodFact) IsVariadic() bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1].Kind == PassVariadic
}

// IsDeprecated reports whether the function carries a deprecation notice
func (f MethodFact) IsDeprecated() bool {
	return f.Deprecated != ""
}
