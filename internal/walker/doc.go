package walker

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/token"
	"strings"
)

// deprecatedPrefix opens the deprecation paragraph of a doc comment
const deprecatedPrefix = "Deprecated:"

// Associated returns the names of the top-level functions go/doc associates
// with typeName: those whose results mention exactly one local type, the
// type itself or a pointer, slice or instantiation of it. The boolean is
// false when the package declares no such type.
func Associated(fset *token.FileSet, files []*ast.File, importPath, typeName string) (map[string]bool, bool, error) {
	if len(files) == 0 {
		return nil, false, nil
	}

	// PreserveAST keeps function bodies and comments; the files are shared
	// with the type checker and the self-wrap scanner.
	dpkg, err := doc.NewFromFiles(fset, files, importPath, doc.AllDecls|doc.PreserveAST)
	if err != nil {
		return nil, false, fmt.Errorf("reading declarations of %s: %w", importPath, err)
	}

	for _, typ := range dpkg.Types {
		if typ.Name != typeName {
			continue
		}
		names := make(map[string]bool, len(typ.Funcs))
		for _, fn := range typ.Funcs {
			names[fn.Name] = true
		}
		return names, true, nil
	}
	return nil, false, nil
}

// DeprecationNotice returns the "Deprecated:" paragraph of a doc comment, or "".
// Line breaks inside the paragraph are kept.
func DeprecationNotice(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	for _, para := range strings.Split(cg.Text(), "\n\n") {
		para = strings.TrimSpace(para)
		if strings.HasPrefix(para, deprecatedPrefix) {
			return para
		}
	}
	return ""
}
