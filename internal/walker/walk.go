package walker

import (
	"go/ast"
	"go/types"
	"iter"

	"golang.org/x/tools/go/packages"
)

// Candidate is a receiver-less exported function found while walking a package
type Candidate struct {
	Pkg  *packages.Package
	File *ast.File
	Decl *ast.FuncDecl
	Func *types.Func
}

// Name returns the function name
func (c Candidate) Name() string {
	return c.Decl.Name.Name
}

// Walk lazily yields the static functions of the given packages in
// declaration order: package, then file, then declaration. Stopping the
// range loop stops the traversal.
func Walk(pkgs ...*packages.Package) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, pkg := range pkgs {
			if !walkPackage(pkg, yield) {
				return
			}
		}
	}
}

func walkPackage(pkg *packages.Package, yield func(Candidate) bool) bool {
	if pkg == nil || pkg.TypesInfo == nil {
		return true
	}
	for _, file := range pkg.Syntax {
		if !walkFile(pkg, file, yield) {
			return false
		}
	}
	return true
}

func walkFile(pkg *packages.Package, file *ast.File, yield func(Candidate) bool) bool {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !IsStaticFunc(fn) {
			continue
		}
		obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
		if !ok {
			continue
		}
		if !yield(Candidate{Pkg: pkg, File: file, Decl: fn, Func: obj}) {
			return false
		}
	}
	return true
}

// IsStaticFunc reports whether a declaration is an ordinary exported
// package-level function
func IsStaticFunc(fn *ast.FuncDecl) bool {
	if fn.Recv != nil || fn.Name == nil {
		return false
	}
	switch fn.Name.Name {
	case "init", "main", "_":
		return false
	}
	return fn.Name.IsExported()
}
