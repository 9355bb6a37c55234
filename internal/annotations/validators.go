package annotations

import (
	"fmt"

	"github.com/toyz/mockable/internal/utils"
)

// Parameter names understood by //mockable::static
const (
	ParamTarget  = "Target"
	ParamType    = "Type"
	ParamName    = "Name"
	ParamInclude = "Include"
	ParamExclude = "Exclude"
)

// ValidateImportPath validates a package import path such as strconv or github.com/jmoiron/sqlx
func ValidateImportPath(v interface{}) error {
	path, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return utils.IsImportPath(ParamTarget)(path)
}

// ValidateExportedName validates the name of an exported type
func ValidateExportedName(v interface{}) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return utils.IsExportedIdentifier(ParamType)(name)
}

// ValidateIdentifier validates a wrapper base name
func ValidateIdentifier(v interface{}) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return utils.IsValidGoIdentifier(ParamName)(name)
}

// ValidatePatterns validates every glob pattern in a list
func ValidatePatterns(v interface{}) error {
	patterns, ok := v.([]string)
	if !ok {
		return fmt.Errorf("must be a list of patterns, got %T", v)
	}
	if len(patterns) == 0 {
		return fmt.Errorf("needs at least one pattern")
	}
	return utils.ValidateEach("patterns", utils.IsGlobPattern("pattern"))(patterns)
}

// TargetParameterSpec describes the external package to wrap
func TargetParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Description: "Import path of the package whose functions are wrapped",
		Validator:   ValidateImportPath,
	}
}

// TypeParameterSpec narrows a package target to the functions associated with one type
func TypeParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Description: "Exported type of the target package; only its constructors and helpers are wrapped",
		Validator:   ValidateExportedName,
	}
}

// NameParameterSpec overrides the wrapper base name
func NameParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Description: "Base name for the generated I<Name>Wrapper and <Name>Wrapper types",
		Validator:   ValidateIdentifier,
	}
}

// PatternParameterSpec returns a comma-separated glob list parameter
func PatternParameterSpec(description string) ParameterSpec {
	return ParameterSpec{
		Type:        StringSliceType,
		Description: description,
		Validator:   ValidatePatterns,
	}
}
