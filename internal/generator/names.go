package generator

import (
	"fmt"

	"github.com/toyz/mockable/internal/models"
)

// CheckNames drops units whose generated type names collide with each other
// or with a declaration of the package. The first unit to claim a name keeps it.
func CheckNames(units []*models.GenerationUnit, declared []string) ([]*models.GenerationUnit, []error) {
	owners := make(map[string]string, len(declared))
	for _, name := range declared {
		owners[name] = ""
	}

	var kept []*models.GenerationUnit
	var problems []error
	for _, unit := range units {
		wrapper := models.SpliceWrapper(unit.Target.BaseName())
		iface := "I" + wrapper

		if problem := nameConflict(unit, owners, wrapper, iface); problem != nil {
			problems = append(problems, problem)
			continue
		}
		owners[wrapper] = unit.Target.Identity()
		owners[iface] = unit.Target.Identity()
		kept = append(kept, unit)
	}
	return kept, problems
}

func nameConflict(unit *models.GenerationUnit, owners map[string]string, names ...string) error {
	for _, name := range names {
		owner, taken := owners[name]
		if !taken {
			continue
		}

		message := fmt.Sprintf("'%s' is already declared in this package", name)
		if owner != "" {
			message = fmt.Sprintf("'%s' is already generated for %s", name, owner)
		}
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			File:    unit.Target.Position.Filename,
			Line:    unit.Target.Position.Line,
			Message: fmt.Sprintf("cannot generate wrapper for %s: %s", unit.Target.Identity(), message),
			Suggestions: []string{
				"Pick a different wrapper name with -Name=<Name>",
			},
			Context: map[string]interface{}{
				"type_name": unit.Target.AnnotatedType,
				"wrapper":   name,
			},
		}
	}
	return nil
}
