package models

import (
	"regexp"
	"strconv"
)

// PackageRef is a package referenced from rendered type text.
//
// Type text never carries a concrete package qualifier. Each qualified
// identifier is written as "$N.Ident", where N indexes the PackageRef list
// stored next to the text. The emitter chooses the final import aliases and
// resolves the placeholders, so facts can be shared between generated files
// that import the same package under different names.
type PackageRef struct {
	Path string
	Name string // declared package name, the preferred qualifier
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)\.`)

// Placeholder returns the qualifier text standing for refs[i]
func Placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}

// AddRef appends ref unless a ref with the same path is present and returns its index
func AddRef(refs []PackageRef, ref PackageRef) ([]PackageRef, int) {
	for i, existing := range refs {
		if existing.Path == ref.Path {
			return refs, i
		}
	}
	return append(refs, ref), len(refs)
}

// ResolveQualifiers rewrites every "$N." in text with qualify(refs[N]) + ".".
// An empty qualifier drops the selector, which is how same-package types are written.
func ResolveQualifiers(text string, refs []PackageRef, qualify func(PackageRef) string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		i, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil || i >= len(refs) {
			return match
		}
		if q := qualify(refs[i]); q != "" {
			return q + "."
		}
		return ""
	})
}

// CanonicalText resolves placeholders to full import paths. The result is not
// valid Go; it is a comparison key independent of placeholder numbering.
func CanonicalText(text string, refs []PackageRef) string {
	return ResolveQualifiers(text, refs, func(ref PackageRef) string { return `"` + ref.Path + `"` })
}

// Canonical returns a copy of the list with constraints in canonical form
func (tp TypeParams) Canonical(refs []PackageRef) TypeParams {
	if tp == nil {
		return nil
	}
	out := make(TypeParams, len(tp))
	for i, p := range tp {
		out[i] = TypeParam{Name: p.Name, Constraint: CanonicalText(p.Constraint, refs)}
	}
	return out
}
