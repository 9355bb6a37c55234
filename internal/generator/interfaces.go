package generator

import "github.com/toyz/mockable/internal/models"

// Emitter turns the generation units of one package into a source file
type Emitter interface {
	Emit(req Request) (*models.EmittedArtifact, error)
}

// Request is the input of one Emit call
type Request struct {
	PackageName string
	PkgPath     string // import path of the package receiving the file
	Dir         string
	Units       []*models.GenerationUnit
	Declared    []string // package-level identifiers of the hand-written files
}
