package generator

import (
	"fmt"
	"slices"
	"strings"

	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/templates"
	"github.com/toyz/mockable/internal/utils"
)

// Generator implements the Emitter interface
type Generator struct {
	fileName string
}

// NewGenerator creates a generator writing models.DefaultOutputFile
func NewGenerator() *Generator {
	return &Generator{fileName: models.DefaultOutputFile}
}

// WithFileName changes the name of the generated file
func (g *Generator) WithFileName(name string) *Generator {
	if name != "" {
		g.fileName = name
	}
	return g
}

// FileName returns the name of the generated file
func (g *Generator) FileName() string {
	return g.fileName
}

// Emit renders all non-empty units of a package into one formatted file.
// It returns nil when there is nothing to write.
func (g *Generator) Emit(req Request) (*models.EmittedArtifact, error) {
	var units []*models.GenerationUnit
	for _, unit := range req.Units {
		if unit != nil && !unit.IsEmpty() {
			units = append(units, unit)
		}
	}
	if len(units) == 0 {
		return nil, nil
	}

	im := templates.NewImportManager(req.PkgPath, reservedNames(units, req.Declared)...)

	// qualify everything first so parameter renaming sees the final import set
	resolved := make([]*models.GenerationUnit, len(units))
	for i, unit := range units {
		resolved[i] = resolveUnit(im, unit)
	}
	for _, unit := range resolved {
		for i := range unit.Facts {
			unit.Facts[i].Params = templates.NormalizeParams(unit.Facts[i].Params, im.IsQualifier)
		}
	}

	blocks := make([]string, len(resolved))
	for i, unit := range resolved {
		block, err := templates.RenderUnit(templates.NewUnitData(unit, describe(unit.Target)))
		if err != nil {
			return nil, mockerrors.WrapTemplateError(unit.WrapperName(), "render", err)
		}
		blocks[i] = block
	}

	source, err := templates.RenderFile(templates.FileData{
		PackageName: req.PackageName,
		Imports:     im.GenerateImports(),
		Units:       blocks,
	})
	if err != nil {
		return nil, mockerrors.WrapTemplateError("file", "render", err)
	}

	formatted, err := utils.FormatGoCode([]byte(source))
	if err != nil {
		return nil, mockerrors.WrapGenerateError("wrappers", g.fileName, err).
			WithStage("format")
	}
	if grouped, err := utils.GroupImports(g.fileName, formatted); err == nil {
		formatted = grouped
	}

	return &models.EmittedArtifact{
		PackageName: req.PackageName,
		Dir:         req.Dir,
		FileName:    g.fileName,
		Imports:     im.Specs(),
		Units:       resolved,
		Source:      formatted,
	}, nil
}

// reservedNames are identifiers an import qualifier must not take: the
// generated type names, their type parameters and the package's own declarations
func reservedNames(units []*models.GenerationUnit, declared []string) []string {
	names := slices.Clone(declared)
	for _, unit := range units {
		base := models.SpliceWrapper(unit.Target.BaseName())
		names = append(names, base, "I"+base)
		for _, tp := range unit.Target.TypeParams {
			names = append(names, tp.Name)
		}
		for _, fact := range unit.Facts {
			for _, tp := range fact.TypeParams {
				names = append(names, tp.Name)
			}
		}
	}
	return names
}

// resolveUnit copies a unit with every placeholder replaced by the qualifier
// im assigned. Facts are shared with the pass cache and are never modified.
func resolveUnit(im *templates.ImportManager, unit *models.GenerationUnit) *models.GenerationUnit {
	target := unit.Target
	target.TypeParams = resolveTypeParams(im, target.TypeParams, target.Imports)
	target.Embeds = make([]string, len(unit.Target.Embeds))
	for i, embed := range unit.Target.Embeds {
		target.Embeds[i] = im.Resolve(embed, unit.Target.Imports)
	}

	out := models.NewGenerationUnit(target)
	out.Facts = make([]models.MethodFact, len(unit.Facts))
	for i, fact := range unit.Facts {
		out.Facts[i] = resolveFact(im, fact)
	}
	return out
}

func resolveFact(im *templates.ImportManager, fact models.MethodFact) models.MethodFact {
	refs := fact.Imports

	params := make([]models.Param, len(fact.Params))
	for i, p := range fact.Params {
		p.Type = im.Resolve(p.Type, refs)
		params[i] = p
	}
	results := make([]string, len(fact.Results))
	for i, r := range fact.Results {
		results[i] = im.Resolve(r, refs)
	}

	if fact.Qualifier != "" {
		fact.Qualifier = strings.TrimSuffix(im.Resolve(fact.Qualifier+".", refs), ".")
	}
	fact.Params = params
	fact.Results = results
	fact.TypeParams = resolveTypeParams(im, fact.TypeParams, refs)
	fact.Imports = nil
	return fact
}

func resolveTypeParams(im *templates.ImportManager, tps models.TypeParams, refs []models.PackageRef) models.TypeParams {
	if tps == nil {
		return nil
	}
	out := make(models.TypeParams, len(tps))
	for i, tp := range tps {
		out[i] = models.TypeParam{Name: tp.Name, Constraint: im.Resolve(tp.Constraint, refs)}
	}
	return out
}

// describe names the wrapped functions in the generated doc comments
func describe(t models.GenerationTarget) string {
	switch {
	case t.Mode == models.SelfWrap:
		return fmt.Sprintf("the functions associated with %s", t.TypeName)
	case t.TypeName != "":
		return fmt.Sprintf("the functions associated with %s.%s", t.PkgName, t.TypeName)
	default:
		return fmt.Sprintf("the functions of package %s", t.PkgName)
	}
}
