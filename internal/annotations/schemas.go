package annotations

import (
	"fmt"
)

// StaticAnnotationSchema defines the schema for //mockable::static annotations
var StaticAnnotationSchema = AnnotationSchema{
	Type:        StaticAnnotation,
	Description: "Generates an interface and a forwarding wrapper for package-level functions",
	Parameters: map[string]ParameterSpec{
		ParamTarget:  TargetParameterSpec(),
		ParamType:    TypeParameterSpec(),
		ParamName:    NameParameterSpec(),
		ParamInclude: PatternParameterSpec("Only functions whose names match one of these globs are wrapped"),
		ParamExclude: PatternParameterSpec("Functions whose names match one of these globs are skipped"),
	},
	Examples: []string{
		"//mockable::static",
		"//mockable::static -Target=strconv",
		"//mockable::static -Target=math/rand -Name=MathRand",
		"//mockable::static -Target=github.com/jmoiron/sqlx -Type=DB",
		"//mockable::static -Target=os -Include=Read*,Write* -Exclude=ReadDir",
	},
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		StaticAnnotationSchema,
	}
}

// RegisterBuiltinSchemas registers all built-in schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register builtin schema %s: %w", schema.Type, err)
		}
	}
	return nil
}

// ValidateStaticParameters is a custom validator for static annotations
func ValidateStaticParameters(annotation *ParsedAnnotation) error {
	if annotation.HasParameter(ParamType) && !annotation.HasParameter(ParamTarget) {
		return fmt.Errorf("-%s requires -%s; a marker without a target already wraps the annotated type", ParamType, ParamTarget)
	}

	include := annotation.GetStringSlice(ParamInclude)
	exclude := annotation.GetStringSlice(ParamExclude)
	for _, in := range include {
		for _, ex := range exclude {
			if in == ex {
				return fmt.Errorf("pattern '%s' is both included and excluded", in)
			}
		}
	}

	return nil
}

func init() {
	StaticAnnotationSchema.Validators = []CustomValidator{
		ValidateStaticParameters,
	}
}
