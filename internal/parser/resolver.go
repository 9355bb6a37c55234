package parser

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"golang.org/x/tools/go/packages"

	mockerrors "github.com/toyz/mockable/internal/errors"
	"github.com/toyz/mockable/internal/facts"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
	"github.com/toyz/mockable/internal/walker"
)

// LoadFunc loads one package by import path
type LoadFunc func(ctx context.Context, importPath string, opts walker.Options) (*packages.Package, error)

// PackageResolver resolves external-wrap targets by loading them with
// go/packages. Loaded packages and resolved entries are cached per pass.
type PackageResolver struct {
	opts     walker.Options
	load     LoadFunc
	gomod    *utils.GoModParser
	packages *facts.Cache[*packages.Package]
	entries  *facts.Cache[facts.Entry]
}

// NewPackageResolver creates a resolver. opts.Dir is ignored; packages are
// always resolved from the annotated package directory.
func NewPackageResolver(reader *utils.FileReader, opts walker.Options) *PackageResolver {
	return &PackageResolver{
		opts:     opts,
		load:     walker.Load,
		gomod:    utils.NewGoModParser(reader),
		packages: facts.NewCache[*packages.Package](),
		entries:  facts.NewCache[facts.Entry](),
	}
}

// WithLoader replaces the package loader
func (r *PackageResolver) WithLoader(load LoadFunc) *PackageResolver {
	r.load = load
	return r
}

// BeginPass starts a new generation in both caches
func (r *PackageResolver) BeginPass() {
	r.packages.BeginPass()
	r.entries.BeginPass()
}

// Stats returns the hit and miss counters of the entry cache
func (r *PackageResolver) Stats() utils.CacheStats {
	return r.entries.Stats()
}

// Resolve loads the target package and renders its eligible functions as
// facts. Functions that cannot be wrapped end up in Entry.Skipped.
func (r *PackageResolver) Resolve(ctx context.Context, target models.GenerationTarget, dir, fromPath string) (facts.Entry, error) {
	if !walker.Importable(target.PkgPath, fromPath) {
		return facts.Entry{}, mockerrors.NewTargetError(target.Identity(),
			fmt.Sprintf("package %s is internal and cannot be imported from %s", target.PkgPath, fromPath))
	}

	return r.entries.GetOrCompute(facts.TargetKey(target), fromPath, func() (facts.Entry, error) {
		pkg, err := r.packages.GetOrCompute(target.PkgPath, r.scope(dir), func() (*packages.Package, error) {
			opts := r.opts
			opts.Dir = dir
			return r.load(ctx, target.PkgPath, opts)
		})
		if err != nil {
			return facts.Entry{}, err
		}

		resolved, err := walker.ResolveTarget(pkg, target)
		if err != nil {
			return facts.Entry{}, err
		}

		entry := facts.Entry{Target: resolved}
		for fact, err := range walker.Facts(pkg, resolved, fromPath) {
			if err != nil {
				var skip *walker.SkipError
				if stderrors.As(err, &skip) {
					entry.Skipped = append(entry.Skipped, skip)
					continue
				}
				return facts.Entry{}, err
			}
			entry.Facts = append(entry.Facts, fact)
		}
		return entry, nil
	})
}

// scope is the module a directory belongs to; package resolution is the
// same for every directory of one module
func (r *PackageResolver) scope(dir string) string {
	goMod, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return dir
	}
	return filepath.Dir(goMod)
}
