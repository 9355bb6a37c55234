package walker

import (
	"errors"
	"fmt"
	"go/types"
	"iter"
	"strings"

	"golang.org/x/tools/go/packages"

	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/models"
)

var (
	// ErrGeneric marks a generic function whose type parameters differ from its owner's.
	// Go interface methods cannot declare their own type parameters.
	ErrGeneric = errors.New("generic function cannot be lifted onto the wrapper")

	// ErrUnexportedType marks a signature that mentions a type the generated file cannot name
	ErrUnexportedType = errors.New("signature mentions a type that is not accessible from the generated package")
)

// SkipError reports why a function was left out of its wrapper
type SkipError struct {
	Func   string
	Reason error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %v", e.Func, e.Reason)
}

func (e *SkipError) Unwrap() error {
	return e.Reason
}

// ResolveTarget completes a target from its loaded package: the declared
// package name and, for -Type targets, the type's parameter list.
func ResolveTarget(pkg *packages.Package, target models.GenerationTarget) (models.GenerationTarget, error) {
	target.PkgName = pkg.Types.Name()
	if target.TypeName == "" {
		return target, nil
	}

	obj, ok := pkg.Types.Scope().Lookup(target.TypeName).(*types.TypeName)
	if !ok {
		return target, mockerrors.NewTargetError(target.Identity(), fmt.Sprintf("type %s not found in package %s", target.TypeName, target.PkgPath))
	}

	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		return target, nil
	}

	refs := target.Imports
	target.TypeParams, refs = renderTypeParams(named.TypeParams(), refs)
	target.Imports = refs
	return target, nil
}

// Facts yields the wrappable functions of pkg for the target, rendered as facts.
// Functions that cannot be wrapped are yielded with a *SkipError; any other
// error ends the sequence. fromPath is the import path of the package that
// receives the generated file.
func Facts(pkg *packages.Package, target models.GenerationTarget, fromPath string) iter.Seq2[models.MethodFact, error] {
	return func(yield func(models.MethodFact, error) bool) {
		filter, err := NewFilter(target.Include, target.Exclude)
		if err != nil {
			yield(models.MethodFact{}, err)
			return
		}

		var associated map[string]bool
		if target.TypeName != "" {
			names, found, err := Associated(pkg.Fset, pkg.Syntax, pkg.PkgPath, target.TypeName)
			if err != nil {
				yield(models.MethodFact{}, err)
				return
			}
			if !found {
				yield(models.MethodFact{}, mockerrors.NewTargetError(target.Identity(), "type has no declaration in the loaded files"))
				return
			}
			associated = names
		}

		for c := range Walk(pkg) {
			if associated != nil && !associated[c.Name()] {
				continue
			}
			if !filter.Match(c.Name()) {
				continue
			}

			fact, err := NewFact(c, target, fromPath)
			if err == nil && !CanLift(fact, target) {
				err = ErrGeneric
			}
			if err != nil {
				if !yield(models.MethodFact{}, &SkipError{Func: c.Name(), Reason: err}) {
					return
				}
				continue
			}
			if !yield(fact, nil) {
				return
			}
		}
	}
}

// CanLift reports whether a fact's type parameters can be carried by the
// wrapper: non-generic facts always can, generic ones only when their list
// matches the owner's exactly.
func CanLift(fact models.MethodFact, target models.GenerationTarget) bool {
	if !fact.IsGeneric() {
		return true
	}
	return fact.TypeParams.Canonical(fact.Imports).Equal(target.TypeParams.Canonical(target.Imports))
}

// NewFact renders a candidate as a MethodFact owned by target. Package
// qualifiers in the rendered text are "$N." placeholders into fact.Imports.
func NewFact(c Candidate, target models.GenerationTarget, fromPath string) (models.MethodFact, error) {
	sig, ok := c.Func.Type().(*types.Signature)
	if !ok {
		return models.MethodFact{}, fmt.Errorf("%s is not a function", c.Name())
	}

	tparams := make(map[*types.TypeParam]bool)
	for i := 0; i < sig.TypeParams().Len(); i++ {
		tparams[sig.TypeParams().At(i)] = true
	}
	check := &accessCheck{from: fromPath, tparams: tparams, seen: make(map[types.Type]bool)}
	if err := check.signature(sig); err != nil {
		return models.MethodFact{}, err
	}

	var refs []models.PackageRef
	qualifier := func(p *types.Package) string {
		var idx int
		refs, idx = models.AddRef(refs, models.PackageRef{Path: p.Path(), Name: p.Name()})
		return models.Placeholder(idx)
	}

	fact := models.MethodFact{
		Name:       c.Name(),
		Owner:      target.Identity(),
		Deprecated: DeprecationNotice(c.Decl.Doc),
		Position:   c.Pkg.Fset.Position(c.Decl.Pos()),
	}

	fact.TypeParams, refs = renderTypeParams(sig.TypeParams(), refs)

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		p := models.Param{Name: v.Name(), Type: types.TypeString(v.Type(), qualifier)}
		if sig.Variadic() && i == params.Len()-1 {
			if s, ok := v.Type().(*types.Slice); ok {
				p.Type = types.TypeString(s.Elem(), qualifier)
				p.Kind = models.PassVariadic
			}
		}
		fact.Params = append(fact.Params, p)
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		fact.Results = append(fact.Results, types.TypeString(results.At(i).Type(), qualifier))
	}

	var idx int
	refs, idx = models.AddRef(refs, models.PackageRef{Path: c.Func.Pkg().Path(), Name: c.Func.Pkg().Name()})
	fact.Qualifier = models.Placeholder(idx)
	fact.Imports = refs

	return fact, nil
}

func renderTypeParams(list *types.TypeParamList, refs []models.PackageRef) (models.TypeParams, []models.PackageRef) {
	if list.Len() == 0 {
		return nil, refs
	}
	qualifier := func(p *types.Package) string {
		var idx int
		refs, idx = models.AddRef(refs, models.PackageRef{Path: p.Path(), Name: p.Name()})
		return models.Placeholder(idx)
	}
	out := make(models.TypeParams, list.Len())
	for i := 0; i < list.Len(); i++ {
		tp := list.At(i)
		out[i] = models.TypeParam{
			Name:       tp.Obj().Name(),
			Constraint: types.TypeString(tp.Constraint(), qualifier),
		}
	}
	return out, refs
}

// Importable reports whether a package at path may be imported from the
// package at from, following the internal directory rule.
func Importable(path, from string) bool {
	var i int
	switch {
	case strings.HasSuffix(path, "/internal"):
		i = len(path) - len("/internal")
	case strings.Contains(path, "/internal/"):
		i = strings.LastIndex(path, "/internal/")
	case path == "internal" || strings.HasPrefix(path, "internal/"):
		// standard library internals
		return false
	default:
		return true
	}
	parent := path[:i]
	return from == parent || strings.HasPrefix(from, parent+"/")
}

// accessCheck verifies that every type in a signature can be spelled by
// the generated file
type accessCheck struct {
	from    string
	tparams map[*types.TypeParam]bool
	seen    map[types.Type]bool
}

func (a *accessCheck) signature(sig *types.Signature) error {
	for i := 0; i < sig.TypeParams().Len(); i++ {
		if err := a.check(sig.TypeParams().At(i).Constraint()); err != nil {
			return err
		}
	}
	for _, tuple := range []*types.Tuple{sig.Params(), sig.Results()} {
		for i := 0; i < tuple.Len(); i++ {
			if err := a.check(tuple.At(i).Type()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *accessCheck) object(obj *types.TypeName) error {
	pkg := obj.Pkg()
	if pkg == nil {
		return nil // predeclared
	}
	if obj.Parent() != nil && obj.Parent() != pkg.Scope() {
		return fmt.Errorf("%w: %s is declared inside a function", ErrUnexportedType, obj.Name())
	}
	if pkg.Path() == a.from {
		return nil
	}
	if !obj.Exported() {
		return fmt.Errorf("%w: %s.%s is unexported", ErrUnexportedType, pkg.Path(), obj.Name())
	}
	if !Importable(pkg.Path(), a.from) {
		return fmt.Errorf("%w: package %s is internal", ErrUnexportedType, pkg.Path())
	}
	return nil
}

func (a *accessCheck) check(t types.Type) error {
	if a.seen[t] {
		return nil
	}
	a.seen[t] = true

	switch t := t.(type) {
	case *types.Basic:
		return nil
	case *types.TypeParam:
		if a.tparams[t] {
			return nil
		}
		return ErrGeneric
	case *types.Alias:
		if err := a.object(t.Obj()); err != nil {
			return err
		}
		return a.typeArgs(t.TypeArgs())
	case *types.Named:
		if err := a.object(t.Obj()); err != nil {
			return err
		}
		return a.typeArgs(t.TypeArgs())
	case *types.Pointer:
		return a.check(t.Elem())
	case *types.Slice:
		return a.check(t.Elem())
	case *types.Array:
		return a.check(t.Elem())
	case *types.Chan:
		return a.check(t.Elem())
	case *types.Map:
		if err := a.check(t.Key()); err != nil {
			return err
		}
		return a.check(t.Elem())
	case *types.Signature:
		return a.signature(t)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if !f.Exported() && f.Pkg() != nil && f.Pkg().Path() != a.from {
				return fmt.Errorf("%w: struct field %s is unexported", ErrUnexportedType, f.Name())
			}
			if err := a.check(f.Type()); err != nil {
				return err
			}
		}
		return nil
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			m := t.ExplicitMethod(i)
			if !m.Exported() && m.Pkg() != nil && m.Pkg().Path() != a.from {
				return fmt.Errorf("%w: interface method %s is unexported", ErrUnexportedType, m.Name())
			}
			if err := a.check(m.Type()); err != nil {
				return err
			}
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			if err := a.check(t.EmbeddedType(i)); err != nil {
				return err
			}
		}
		return nil
	case *types.Union:
		for i := 0; i < t.Len(); i++ {
			if err := a.check(t.Term(i).Type()); err != nil {
				return err
			}
		}
		return nil
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			if err := a.check(t.At(i).Type()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %s", ErrUnexportedType, t)
	}
}

func (a *accessCheck) typeArgs(list *types.TypeList) error {
	for i := 0; i < list.Len(); i++ {
		if err := a.check(list.At(i)); err != nil {
			return err
		}
	}
	return nil
}
