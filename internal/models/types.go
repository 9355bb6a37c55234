package models

import "strings"

// WrapMode selects where the wrapped functions come from
type WrapMode int

const (
	// ExternalWrap wraps the functions of another package (optionally narrowed to one of its types)
	ExternalWrap WrapMode = iota
	// SelfWrap wraps the functions associated with the annotated type itself
	SelfWrap
)

// String returns the string representation of the wrap mode
func (m WrapMode) String() string {
	switch m {
	case ExternalWrap:
		return "external"
	case SelfWrap:
		return "self"
	default:
		return "unknown"
	}
}

// PassingKind describes how an argument is handed to the wrapped function
type PassingKind int

const (
	PassNone PassingKind = iota
	PassVariadic
)

// String returns the string representation of the passing kind
func (k PassingKind) String() string {
	switch k {
	case PassNone:
		return "none"
	case PassVariadic:
		return "variadic"
	default:
		return "unknown"
	}
}

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
	ErrorTypeTargetResolution
	ErrorTypeConfiguration
)

// String returns the string representation of the error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeAnnotationSyntax:
		return "AnnotationSyntax"
	case ErrorTypeValidation:
		return "Validation"
	case ErrorTypeGeneration:
		return "Generation"
	case ErrorTypeFileSystem:
		return "FileSystem"
	case ErrorTypeTargetResolution:
		return "TargetResolution"
	case ErrorTypeConfiguration:
		return "Configuration"
	default:
		return "Unknown"
	}
}

// TypeParam is one entry of a type parameter list, e.g. "U fmt.Stringer"
type TypeParam struct {
	Name       string
	Constraint string
}

// TypeParams is an ordered type parameter list
type TypeParams []TypeParam

// Decl renders the declaration form "[T any, U fmt.Stringer]", or "" when empty
func (tp TypeParams) Decl() string {
	if len(tp) == 0 {
		return ""
	}
	parts := make([]string, len(tp))
	for i, p := range tp {
		constraint := p.Constraint
		if constraint == "" {
			constraint = "any"
		}
		parts[i] = p.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Args renders the instantiation form "[T, U]", or "" when empty
func (tp TypeParams) Args() string {
	if len(tp) == 0 {
		return ""
	}
	names := make([]string, len(tp))
	for i, p := range tp {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Equal reports whether both lists declare the same names and constraints in the same order
func (tp TypeParams) Equal(other TypeParams) bool {
	if len(tp) != len(other) {
		return false
	}
	for i := range tp {
		if tp[i].Name != other[i].Name || normalizeConstraint(tp[i].Constraint) != normalizeConstraint(other[i].Constraint) {
			return false
		}
	}
	return true
}

func normalizeConstraint(c string) string {
	c = strings.Join(strings.Fields(c), " ")
	if c == "" || c == "interface{}" {
		return "any"
	}
	return c
}
