package annotations

import (
	"fmt"
	"sort"
)

// SchemaValidator defines the interface for validating annotations against their schemas
type SchemaValidator interface {
	// Validate annotation against its schema
	Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// ApplyDefaults applies default values for missing optional parameters
	ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// TransformParameters converts raw parameter values to their declared types
	TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error
}

type validator struct{}

// NewValidator creates a new schema validator
func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate validates an annotation against its schema. All problems are
// collected; parameters are visited in name order so messages are stable.
func (v *validator) Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	var errs []error

	for _, paramName := range sortedKeys(schema.Parameters) {
		paramSpec := schema.Parameters[paramName]
		if !paramSpec.Required {
			continue
		}
		if _, exists := annotation.Parameters[paramName]; !exists {
			errs = append(errs, &ValidationError{
				Parameter: paramName,
				Expected:  fmt.Sprintf("required parameter of type %s", paramSpec.Type),
				Actual:    "missing",
				Loc:       annotation.Location,
				Hint:      fmt.Sprintf("Add -%s=<value> to the annotation", paramName),
			})
		}
	}

	for _, paramName := range sortedKeys(annotation.Parameters) {
		paramValue := annotation.Parameters[paramName]
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			errs = append(errs, &ValidationError{
				Parameter: paramName,
				Expected:  "known parameter",
				Actual:    fmt.Sprintf("unknown parameter '%s'", paramName),
				Loc:       annotation.Location,
				Hint:      fmt.Sprintf("Remove -%s or use one of: %s", paramName, knownParameters(schema)),
			})
			continue
		}

		if err := v.validateParameterType(paramName, paramSpec.Type, paramValue, annotation.Location); err != nil {
			errs = append(errs, err)
			continue
		}

		if paramSpec.Validator != nil {
			if err := paramSpec.Validator(paramValue); err != nil {
				errs = append(errs, &ValidationError{
					Parameter: paramName,
					Expected:  "valid value",
					Actual:    fmt.Sprintf("%v", paramValue),
					Loc:       annotation.Location,
					Hint:      err.Error(),
				})
			}
		}
	}

	// cross-parameter rules only make sense once every value is well formed
	if len(errs) == 0 {
		for _, customValidator := range schema.Validators {
			if err := customValidator(annotation); err != nil {
				errs = append(errs, &SchemaError{
					Msg:  err.Error(),
					Loc:  annotation.Location,
					Hint: "Check annotation parameters and their combinations",
				})
			}
		}
	}

	if len(errs) > 0 {
		return &MultipleValidationErrors{Errors: errs}
	}

	return nil
}

// ApplyDefaults applies default values for missing optional parameters
func (v *validator) ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	if annotation.Parameters == nil {
		annotation.Parameters = make(map[string]interface{})
	}

	for paramName, paramSpec := range schema.Parameters {
		if _, exists := annotation.Parameters[paramName]; !exists && paramSpec.DefaultValue != nil {
			annotation.Parameters[paramName] = paramSpec.DefaultValue
		}
	}

	return nil
}

// TransformParameters converts raw parameter values to their declared types
func (v *validator) TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	for paramName, paramValue := range annotation.Parameters {
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			continue
		}

		transformed, err := v.transformParameterValue(paramValue, paramSpec.Type)
		if err != nil {
			return &ValidationError{
				Parameter: paramName,
				Expected:  fmt.Sprintf("value convertible to %s", paramSpec.Type),
				Actual:    fmt.Sprintf("%v (%T)", paramValue, paramValue),
				Loc:       annotation.Location,
				Hint:      err.Error(),
			}
		}

		annotation.Parameters[paramName] = transformed
	}

	return nil
}

func (v *validator) validateParameterType(paramName string, expectedType ParameterType, value interface{}, location SourceLocation) error {
	var ok bool
	hint := ""
	switch expectedType {
	case StringType:
		_, ok = value.(string)
		hint = "Provide a value with -" + paramName + "=<value>"
	case BoolType:
		_, ok = value.(bool)
		hint = "Use -" + paramName + " or -" + paramName + "=true"
	case StringSliceType:
		_, ok = value.([]string)
		hint = "Provide comma-separated values"
	}

	if ok {
		return nil
	}
	return &ValidationError{
		Parameter: paramName,
		Expected:  expectedType.String(),
		Actual:    fmt.Sprintf("%T", value),
		Loc:       location,
		Hint:      hint,
	}
}

func (v *validator) transformParameterValue(value interface{}, targetType ParameterType) (interface{}, error) {
	switch targetType {
	case StringType:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("a value is required")
	case BoolType:
		return ConvertToBool(value)
	case StringSliceType:
		if _, ok := value.(bool); ok {
			return nil, fmt.Errorf("a list of values is required")
		}
		return ConvertToStringSlice(value)
	default:
		return nil, fmt.Errorf("unsupported target type: %d", targetType)
	}
}

func knownParameters(schema AnnotationSchema) string {
	names := sortedKeys(schema.Parameters)
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += "-" + name
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
