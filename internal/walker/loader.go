package walker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/mockable/internal/errors"
)

// LoadMode is the information the walker needs from go/packages
const LoadMode = packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedImports

// Options controls how target packages are resolved
type Options struct {
	Dir  string   // directory import paths are resolved from, usually the annotated package
	Tags []string // build tags
	Env  []string // added to the process environment of the go command
}

// Load loads a target package by import path. Any load or type error makes
// the target unresolvable; the caller decides whether that is fatal.
func Load(ctx context.Context, importPath string, opts Options) (*packages.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     opts.Dir,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}
	if len(opts.Env) > 0 {
		cfg.Env = append(os.Environ(), opts.Env...)
	}

	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapTargetError(importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, errors.NewTargetError(importPath, "no packages found")
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		msgs := make([]string, len(pkg.Errors))
		for i, e := range pkg.Errors {
			msgs[i] = e.Error()
		}
		return nil, errors.NewTargetError(importPath, fmt.Sprintf("package has errors: %s", strings.Join(msgs, "; ")))
	}
	if pkg.Types == nil || pkg.TypesInfo == nil {
		return nil, errors.NewTargetError(importPath, "type information not available")
	}

	return pkg, nil
}
