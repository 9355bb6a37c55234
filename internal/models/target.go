package models

import (
	"go/token"
	"strings"
	"unicode"
)

// GenerationTarget describes where the wrapped functions live.
// It is read-only once discovery has produced it.
type GenerationTarget struct {
	Mode     WrapMode
	PkgPath  string // import path of the package holding the functions
	PkgName  string // declared package name of PkgPath
	TypeName string // optional: narrow to functions associated with this type
	Alias    string // optional: overrides the wrapper base name

	TypeParams TypeParams   // type parameters of TypeName when it is generic
	Embeds     []string     // embedded fields of the annotated struct (self-wrap only)
	Imports    []PackageRef // packages behind the "$N" placeholders in TypeParams and Embeds

	Include []string // glob patterns over function names
	Exclude []string

	// Where the marker was found
	Position      token.Position
	AnnotatedType string
	AnnotatedDir  string
}

// Identity uniquely identifies the target across a pass
func (t GenerationTarget) Identity() string {
	if t.TypeName == "" {
		return t.PkgPath
	}
	return t.PkgPath + "." + t.TypeName
}

// BaseName is the wrapper base name without type parameters
func (t GenerationTarget) BaseName() string {
	if t.Alias != "" {
		return t.Alias
	}
	if t.TypeName != "" {
		return t.TypeName
	}
	return PascalCase(t.PkgName)
}

// PascalCase converts a package name like "strconv" or "go_yaml" into "Strconv" / "GoYaml"
func PascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
