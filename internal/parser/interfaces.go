package parser

import (
	"context"

	"github.com/toyz/mockable/internal/facts"
	"github.com/toyz/mockable/internal/models"
)

// MarkerDiscovery finds //mockable::static markers in a package directory and
// turns them into generation units
type MarkerDiscovery interface {
	ParsePackage(ctx context.Context, dir, pkgPath string) (*Result, error)
	BeginPass() uint64
}

// TargetResolver resolves an external-wrap target into its facts.
// fromPath is the import path of the package receiving the wrapper.
type TargetResolver interface {
	Resolve(ctx context.Context, target models.GenerationTarget, dir, fromPath string) (facts.Entry, error)
	BeginPass()
}
