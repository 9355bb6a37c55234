package generator

import (
	stderrors "errors"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mockable/internal/models"
)

var strconvRefs = []models.PackageRef{{Path: "strconv", Name: "strconv"}}

func strconvUnit() *models.GenerationUnit {
	unit := models.NewGenerationUnit(models.GenerationTarget{
		Mode:    models.ExternalWrap,
		PkgPath: "strconv",
		PkgName: "strconv",
	})
	unit.Facts = []models.MethodFact{
		{Name: "Itoa", Owner: "strconv", Qualifier: "$0", Params: []models.Param{{Name: "i", Type: "int"}}, Results: []string{"string"}, Imports: strconvRefs},
		{Name: "Atoi", Owner: "strconv", Qualifier: "$0", Params: []models.Param{{Name: "s", Type: "string"}}, Results: []string{"int", "error"}, Imports: strconvRefs},
	}
	return unit
}

func studentUnit() *models.GenerationUnit {
	unit := models.NewGenerationUnit(models.GenerationTarget{
		Mode:          models.SelfWrap,
		PkgPath:       "example.com/school/repo",
		PkgName:       "repo",
		TypeName:      "StudentRepository",
		Embeds:        []string{"Base"},
		AnnotatedType: "StudentRepository",
	})
	unit.Facts = []models.MethodFact{
		{
			Name:  "NewStudentRepository",
			Owner: "example.com/school/repo.StudentRepository",
			Params: []models.Param{
				{Name: "ctx", Type: "$0.Context"},
				{Name: "timeout", Type: "$1.Duration"},
			},
			Results: []string{"*StudentRepository", "error"},
			Imports: []models.PackageRef{{Path: "context", Name: "context"}, {Path: "time"}},
		},
		{
			Name:    "Count",
			Owner:   "example.com/school/repo.StudentRepository",
			Results: []string{"int"},
		},
	}
	return unit
}

func emit(t *testing.T, req Request) *models.EmittedArtifact {
	t.Helper()
	if req.Dir == "" {
		req.Dir = t.TempDir()
	}
	artifact, err := NewGenerator().Emit(req)
	require.NoError(t, err)
	require.NotNil(t, artifact)
	_, err = parser.ParseFile(token.NewFileSet(), artifact.Path(), artifact.Source, parser.ParseComments)
	require.NoError(t, err, string(artifact.Source))
	return artifact
}

func TestEmitExternalPackage(t *testing.T) {
	artifact := emit(t, Request{PackageName: "deps", PkgPath: "example.com/app/deps", Units: []*models.GenerationUnit{strconvUnit()}})
	src := string(artifact.Source)

	assert.Contains(t, src, "// Code generated by mockable. DO NOT EDIT.\n\npackage deps\n")
	assert.Contains(t, src, "import \"strconv\"\n")
	assert.Contains(t, src, "// IStrconvWrapper mirrors the functions of package strconv.\ntype IStrconvWrapper interface {\n\tItoa(i int) string\n\tAtoi(s string) (int, error)\n}")
	assert.Contains(t, src, "func (StrconvWrapper) Itoa(i int) string {\n\treturn strconv.Itoa(i)\n}")
	assert.Contains(t, src, "func (StrconvWrapper) Atoi(s string) (int, error) {\n\treturn strconv.Atoi(s)\n}")
	assert.Contains(t, src, "var _ IStrconvWrapper = StrconvWrapper{}")

	assert.Equal(t, models.DefaultOutputFile, artifact.FileName)
	assert.Equal(t, []models.ImportSpec{{Path: "strconv"}}, artifact.Imports)
	assert.Equal(t, 2, artifact.MethodCount())
}

func TestEmitParameterFidelity(t *testing.T) {
	refs := []models.PackageRef{{Path: "example.com/lib/pkg", Name: "pkg"}}
	unit := models.NewGenerationUnit(models.GenerationTarget{PkgPath: "example.com/lib/pkg", PkgName: "pkg"})
	unit.Facts = []models.MethodFact{
		{
			Name:      "F",
			Qualifier: "$0",
			Params: []models.Param{
				{Name: "x", Type: "*int"},
				{Name: "ys", Type: "string", Kind: models.PassVariadic},
			},
			Imports: refs,
		},
		{
			Name:       "Reset",
			Qualifier:  "$0",
			Deprecated: "Deprecated: use New.",
			Imports:    refs,
		},
		{
			Name:      "Pair",
			Qualifier: "$0",
			Params:    []models.Param{{Type: "int"}, {Name: "_", Type: "$0.Options"}},
			Results:   []string{"error"},
			Imports:   refs,
		},
	}

	src := string(emit(t, Request{PackageName: "app", PkgPath: "example.com/app", Units: []*models.GenerationUnit{unit}}).Source)

	assert.Contains(t, src, "\tF(x *int, ys ...string)\n")
	assert.Contains(t, src, "func (PkgWrapper) F(x *int, ys ...string) {\n\tpkg.F(x, ys...)\n}")
	assert.Contains(t, src, "// Deprecated: use New.\nfunc (PkgWrapper) Reset() {\n\tpkg.Reset()\n}")
	assert.Contains(t, src, "func (PkgWrapper) Pair(p0 int, p1 pkg.Options) error {\n\treturn pkg.Pair(p0, p1)\n}")
	assert.Equal(t, 1, strings.Count(src, "Deprecated"), "only above the wrapper method")
}

func TestEmitGenericOwner(t *testing.T) {
	refs := []models.PackageRef{{Path: "fmt", Name: "fmt"}}
	tparams := models.TypeParams{{Name: "T", Constraint: "any"}, {Name: "U", Constraint: "$0.Stringer"}}
	unit := models.NewGenerationUnit(models.GenerationTarget{
		Mode:       models.SelfWrap,
		PkgPath:    "example.com/app/sample",
		PkgName:    "sample",
		TypeName:   "Sample",
		TypeParams: tparams,
		Imports:    refs,
	})
	unit.Facts = []models.MethodFact{{
		Name:       "NewSample",
		Params:     []models.Param{{Name: "t", Type: "T"}},
		Results:    []string{"*Sample[T, U]"},
		TypeParams: tparams,
		Imports:    refs,
	}}

	artifact := emit(t, Request{PackageName: "sample", PkgPath: "example.com/app/sample", Units: []*models.GenerationUnit{unit}})
	src := string(artifact.Source)

	assert.Contains(t, src, "import \"fmt\"\n")
	assert.Contains(t, src, "type ISampleWrapper[T any, U fmt.Stringer] interface {")
	assert.Contains(t, src, "type SampleWrapper[T any, U fmt.Stringer] struct {")
	assert.Contains(t, src, "func (SampleWrapper[T, U]) NewSample(t T) *Sample[T, U] {\n\treturn NewSample[T, U](t)\n}")
	assert.NotContains(t, src, "var _")
	assert.Equal(t, "SampleWrapper[T any, U fmt.Stringer]", artifact.Units[0].WrapperName())
}

func TestEmitSelfWrap(t *testing.T) {
	artifact := emit(t, Request{
		PackageName: "repo",
		PkgPath:     "example.com/school/repo",
		Units:       []*models.GenerationUnit{studentUnit()},
		Declared:    []string{"Base", "StudentRepository", "NewStudentRepository", "Count"},
	})
	src := string(artifact.Source)

	assert.Contains(t, src, "import (\n\t\"context\"\n\t\"time\"\n)")
	assert.Contains(t, src, "type IStudentRepositoryWrapper interface {\n\tNewStudentRepository(ctx context.Context, timeout time.Duration) (*StudentRepository, error)\n\tCount() int\n}")
	assert.Contains(t, src, "type StudentRepositoryWrapper struct {\n\tBase\n}")
	assert.Contains(t, src, "return NewStudentRepository(ctx, timeout)")
	assert.Contains(t, src, "return Count()")
	assert.Contains(t, src, "var _ IStudentRepositoryWrapper = StudentRepositoryWrapper{}")
}

func TestEmitAvoidsShadowing(t *testing.T) {
	refs := []models.PackageRef{{Path: "math/rand", Name: "rand"}, {Path: "strconv", Name: "strconv"}}
	unit := models.NewGenerationUnit(models.GenerationTarget{PkgPath: "strconv", PkgName: "strconv"})
	unit.Facts = []models.MethodFact{{
		Name:      "Shuffle",
		Qualifier: "$1",
		Params:    []models.Param{{Name: "strconv", Type: "*$0.Rand"}},
		Imports:   refs,
	}}

	artifact := emit(t, Request{PackageName: "app", PkgPath: "example.com/app", Units: []*models.GenerationUnit{unit}, Declared: []string{"rand"}})
	src := string(artifact.Source)

	assert.Contains(t, src, "mathrand \"math/rand\"")
	assert.Contains(t, src, "func (StrconvWrapper) Shuffle(strconv_ *mathrand.Rand) {\n\tstrconv.Shuffle(strconv_)\n}")
}

func TestEmitIsIdempotent(t *testing.T) {
	req := Request{PackageName: "repo", PkgPath: "example.com/school/repo", Dir: t.TempDir(),
		Units: []*models.GenerationUnit{studentUnit(), strconvUnit()}}

	first, err := NewGenerator().Emit(req)
	require.NoError(t, err)
	second, err := NewGenerator().Emit(req)
	require.NoError(t, err)

	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, "$0.Context", req.Units[0].Facts[0].Params[0].Type, "input facts are not modified")
	assert.Equal(t, "$0", req.Units[1].Facts[0].Qualifier)
}

func TestEmitEmpty(t *testing.T) {
	g := NewGenerator()

	artifact, err := g.Emit(Request{PackageName: "empty", PkgPath: "example.com/empty"})
	require.NoError(t, err)
	assert.Nil(t, artifact)

	artifact, err = g.Emit(Request{PackageName: "empty", PkgPath: "example.com/empty", Units: []*models.GenerationUnit{
		models.NewGenerationUnit(models.GenerationTarget{PkgPath: "strconv", PkgName: "strconv"}),
	}})
	require.NoError(t, err)
	assert.Nil(t, artifact, "units without facts produce no file")
}

func TestEmitFileName(t *testing.T) {
	dir := t.TempDir()
	artifact, err := NewGenerator().WithFileName("autogen_wrappers.go").Emit(Request{
		PackageName: "deps", PkgPath: "example.com/app/deps", Dir: dir, Units: []*models.GenerationUnit{strconvUnit()},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "autogen_wrappers.go"), artifact.Path())
}

func TestCheckNames(t *testing.T) {
	aliased := func(identity, alias string) *models.GenerationUnit {
		unit := models.NewGenerationUnit(models.GenerationTarget{
			PkgPath:  identity,
			PkgName:  identity,
			Alias:    alias,
			Position: token.Position{Filename: "deps.go", Line: 3},
		})
		unit.Facts = []models.MethodFact{{Name: "F"}}
		return unit
	}

	tests := []struct {
		name     string
		units    []*models.GenerationUnit
		declared []string
		kept     []string
		problem  string
	}{
		{
			name:  "distinct names",
			units: []*models.GenerationUnit{aliased("strconv", ""), aliased("strings", "")},
			kept:  []string{"StrconvWrapper", "StringsWrapper"},
		},
		{
			name:    "two targets under one alias",
			units:   []*models.GenerationUnit{aliased("strconv", "Text"), aliased("strings", "Text")},
			kept:    []string{"TextWrapper"},
			problem: "already generated for strconv",
		},
		{
			name:     "declared by the package",
			units:    []*models.GenerationUnit{aliased("strconv", "")},
			declared: []string{"IStrconvWrapper"},
			problem:  "already declared in this package",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, problems := CheckNames(tt.units, tt.declared)

			var names []string
			for _, unit := range kept {
				names = append(names, unit.WrapperName())
			}
			assert.Equal(t, tt.kept, names)

			if tt.problem == "" {
				assert.Empty(t, problems)
				return
			}
			require.Len(t, problems, 1)
			var genErr *models.GeneratorError
			require.True(t, stderrors.As(problems[0], &genErr))
			assert.Contains(t, genErr.Message, tt.problem)
			assert.Equal(t, "deps.go", genErr.File)
		})
	}
}
