package models

import (
	"path/filepath"
	"strings"
)

// DefaultOutputFile is the name of the generated file in each annotated package
const DefaultOutputFile = "autogen_mockable.go"

// GenerationUnit groups the facts of one owner together with its naming rules
type GenerationUnit struct {
	Target GenerationTarget
	Facts  []MethodFact
}

// NewGenerationUnit creates an empty unit for the target
func NewGenerationUnit(target GenerationTarget) *GenerationUnit {
	return &GenerationUnit{Target: target}
}

// DisplayName is the owner name including its type parameter declaration
func (u *GenerationUnit) DisplayName() string {
	return u.Target.BaseName() + u.Target.TypeParams.Decl()
}

// WrapperName is the forwarding type name as declared, e.g. "SampleWrapper[T any]"
func (u *GenerationUnit) WrapperName() string {
	return SpliceWrapper(u.DisplayName())
}

// InterfaceName is the interface name as declared, e.g. "ISampleWrapper[T any]"
func (u *GenerationUnit) InterfaceName() string {
	return "I" + u.WrapperName()
}

// WrapperRef is the instantiated forwarding type, e.g. "SampleWrapper[T]"
func (u *GenerationUnit) WrapperRef() string {
	return SpliceWrapper(u.Target.BaseName() + u.Target.TypeParams.Args())
}

// InterfaceRef is the instantiated interface, e.g. "ISampleWrapper[T]"
func (u *GenerationUnit) InterfaceRef() string {
	return "I" + u.WrapperRef()
}

// IsGeneric reports whether the owner carries type parameters
func (u *GenerationUnit) IsGeneric() bool {
	return len(u.Target.TypeParams) > 0
}

// IsEmpty reports whether there is nothing to emit for this unit
func (u *GenerationUnit) IsEmpty() bool {
	return len(u.Facts) == 0
}

// SpliceWrapper inserts "Wrapper" before the first "[" or appends it when there is none
func SpliceWrapper(display string) string {
	if i := strings.IndexByte(display, '['); i >= 0 {
		return display[:i] + "Wrapper" + display[i:]
	}
	return display + "Wrapper"
}

// ImportSpec is one entry of the generated import block
type ImportSpec struct {
	Alias string // empty when the package name matches the path
	Path  string
}

// EmittedArtifact is one generated source file. It is rebuilt on every pass.
type EmittedArtifact struct {
	PackageName string
	Dir         string
	FileName    string
	Imports     []ImportSpec
	Units       []*GenerationUnit
	Source      []byte
}

// Path returns the output file path
func (a *EmittedArtifact) Path() string {
	name := a.FileName
	if name == "" {
		name = DefaultOutputFile
	}
	return filepath.Join(a.Dir, name)
}

// MethodCount returns the number of wrapped functions across all units
func (a *EmittedArtifact) MethodCount() int {
	count := 0
	for _, unit := range a.Units {
		count += len(unit.Facts)
	}
	return count
}
