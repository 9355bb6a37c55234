package parser

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"go/types"
	"regexp"
	"strconv"

	"github.com/toyz/mockable/internal/facts"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
	"github.com/toyz/mockable/internal/walker"
)

// ScanSelf collects the exported package-level functions of src that go/doc
// associates with the annotated type. It works on syntax only; type text is
// taken from the source and package qualifiers become "$N." placeholders.
func ScanSelf(src *PackageSource, file *ast.File, spec *ast.TypeSpec, target models.GenerationTarget) (facts.Entry, error) {
	names, found, err := walker.Associated(src.Fset, src.ASTs(), src.PkgPath, spec.Name.Name)
	if err != nil {
		return facts.Entry{}, err
	}
	if !found {
		return facts.Entry{}, fmt.Errorf("type %s not found in package %s", spec.Name.Name, src.PkgPath)
	}

	filter, err := walker.NewFilter(target.Include, target.Exclude)
	if err != nil {
		return facts.Entry{}, err
	}

	owner := newTypeText(src.Fset, file)
	target.TypeParams = owner.typeParams(spec.TypeParams)
	target.Embeds = owner.embeds(spec)
	target.Imports = owner.refs

	entry := facts.Entry{Target: target}
	for _, sf := range src.Files {
		for _, decl := range sf.AST.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !walker.IsStaticFunc(fn) || !names[fn.Name.Name] || !filter.Match(fn.Name.Name) {
				continue
			}
			fact := selfFact(src.Fset, sf.AST, fn, target)
			if !walker.CanLift(fact, target) {
				entry.Skipped = append(entry.Skipped, &walker.SkipError{Func: fn.Name.Name, Reason: walker.ErrGeneric})
				continue
			}
			entry.Facts = append(entry.Facts, fact)
		}
	}

	return entry, nil
}

func selfFact(fset *token.FileSet, file *ast.File, fn *ast.FuncDecl, target models.GenerationTarget) models.MethodFact {
	tt := newTypeText(fset, file)
	fact := models.MethodFact{
		Name:       fn.Name.Name,
		Owner:      target.Identity(),
		TypeParams: tt.typeParams(fn.Type.TypeParams),
		Deprecated: walker.DeprecationNotice(fn.Doc),
		Position:   fset.Position(fn.Pos()),
	}

	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			typ, kind := field.Type, models.PassNone
			if ellipsis, ok := typ.(*ast.Ellipsis); ok {
				typ, kind = ellipsis.Elt, models.PassVariadic
			}
			text := tt.text(typ)
			if len(field.Names) == 0 {
				fact.Params = append(fact.Params, models.Param{Type: text, Kind: kind})
				continue
			}
			for _, name := range field.Names {
				fact.Params = append(fact.Params, models.Param{Name: name.Name, Type: text, Kind: kind})
			}
		}
	}

	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			text := tt.text(field.Type)
			for range max(1, len(field.Names)) {
				fact.Results = append(fact.Results, text)
			}
		}
	}

	fact.Imports = tt.refs
	return fact
}

// qualifierPattern matches an identifier followed by a selector dot that is
// not itself part of a selector chain or a placeholder
var qualifierPattern = regexp.MustCompile(`(^|[^\w.$])([A-Za-z_]\w*)\.`)

// typeText renders type expressions of one file with placeholder qualifiers
type typeText struct {
	fset    *token.FileSet
	imports map[string]models.PackageRef // local name -> package
	refs    []models.PackageRef
}

func newTypeText(fset *token.FileSet, file *ast.File) *typeText {
	return &typeText{fset: fset, imports: fileImports(file)}
}

// fileImports maps the names a file uses for its imports to package refs.
// The declared name is only known for unaliased imports whose name matches
// the path; otherwise it is left empty and the emitter aliases the import.
func fileImports(file *ast.File) map[string]models.PackageRef {
	out := make(map[string]models.PackageRef, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		guess := utils.GuessPackageName(path)
		if spec.Name == nil {
			out[guess] = models.PackageRef{Path: path, Name: guess}
			continue
		}
		if spec.Name.Name == "_" || spec.Name.Name == "." {
			continue
		}
		out[spec.Name.Name] = models.PackageRef{Path: path}
	}
	return out
}

func (t *typeText) text(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, t.fset, expr); err != nil {
		buf.Reset()
		buf.WriteString(types.ExprString(expr))
	}
	return qualifierPattern.ReplaceAllStringFunc(buf.String(), func(match string) string {
		sub := qualifierPattern.FindStringSubmatch(match)
		ref, ok := t.imports[sub[2]]
		if !ok {
			return match
		}
		var idx int
		t.refs, idx = models.AddRef(t.refs, ref)
		return sub[1] + models.Placeholder(idx) + "."
	})
}

func (t *typeText) typeParams(list *ast.FieldList) models.TypeParams {
	if list == nil {
		return nil
	}
	var out models.TypeParams
	for _, field := range list.List {
		constraint := t.text(field.Type)
		for _, name := range field.Names {
			out = append(out, models.TypeParam{Name: name.Name, Constraint: constraint})
		}
	}
	return out
}

// embeds returns the embedded fields of a struct type, which the wrapper re-embeds
func (t *typeText) embeds(spec *ast.TypeSpec) []string {
	st, ok := spec.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return nil
	}
	var out []string
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			out = append(out, t.text(field.Type))
		}
	}
	return out
}
