package templates

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

// ImportManager assigns a unique qualifier to every package a generated file
// refers to and renders the import block
type ImportManager struct {
	selfPath string
	byPath   map[string]string // path -> qualifier
	byAlias  map[string]string // qualifier -> path
	names    map[string]string // path -> declared package name
	reserved map[string]bool
}

// NewImportManager creates an import manager for a file of the package at selfPath.
// Reserved names are never handed out as qualifiers.
func NewImportManager(selfPath string, reserved ...string) *ImportManager {
	im := &ImportManager{
		selfPath: selfPath,
		byPath:   make(map[string]string),
		byAlias:  make(map[string]string),
		names:    make(map[string]string),
		reserved: make(map[string]bool),
	}
	for _, name := range reserved {
		im.reserved[name] = true
	}
	return im
}

// Qualify returns the qualifier for ref, registering an import on first use.
// References to the file's own package have no qualifier.
func (im *ImportManager) Qualify(ref models.PackageRef) string {
	if ref.Path == "" || ref.Path == im.selfPath {
		return ""
	}
	if alias, ok := im.byPath[ref.Path]; ok {
		return alias
	}

	name := ref.Name
	if name == "" {
		name = utils.GuessPackageName(ref.Path)
	}
	alias := im.pickAlias(ref.Path, name)

	im.byPath[ref.Path] = alias
	im.byAlias[alias] = ref.Path
	im.names[ref.Path] = ref.Name
	if ref.Name == "" && path.Base(ref.Path) == name {
		im.names[ref.Path] = name
	}
	return alias
}

// AddImport registers an import path and returns its qualifier
func (im *ImportManager) AddImport(importPath string) string {
	return im.Qualify(models.PackageRef{Path: importPath})
}

// Resolve rewrites placeholder text against refs with this manager's qualifiers
func (im *ImportManager) Resolve(text string, refs []models.PackageRef) string {
	return models.ResolveQualifiers(text, refs, im.Qualify)
}

// IsQualifier reports whether name is taken by an import of this file
func (im *ImportManager) IsQualifier(name string) bool {
	_, ok := im.byAlias[name]
	return ok
}

// Specs returns the registered imports sorted by path. The alias is only
// set when it differs from the declared package name or the name was guessed
// from a path whose last element is not the package name.
func (im *ImportManager) Specs() []models.ImportSpec {
	paths := make([]string, 0, len(im.byPath))
	for p := range im.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	specs := make([]models.ImportSpec, 0, len(paths))
	for _, p := range paths {
		spec := models.ImportSpec{Path: p}
		if alias := im.byPath[p]; alias != im.names[p] {
			spec.Alias = alias
		}
		specs = append(specs, spec)
	}
	return specs
}

// GenerateImports generates the import section
func (im *ImportManager) GenerateImports() string {
	specs := im.Specs()
	if len(specs) == 0 {
		return ""
	}

	lines := make([]string, len(specs))
	for i, spec := range specs {
		if spec.Alias != "" {
			lines[i] = fmt.Sprintf("%s %q", spec.Alias, spec.Path)
		} else {
			lines[i] = strconv.Quote(spec.Path)
		}
	}

	if len(lines) == 1 {
		return fmt.Sprintf("import %s\n", lines[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range lines {
		result.WriteString("\t" + line + "\n")
	}
	result.WriteString(")\n")
	return result.String()
}

// pickAlias prefers the package name, then the parent element joined with
// the name (crypto/rand -> cryptorand), then numbered variants
func (im *ImportManager) pickAlias(importPath, name string) string {
	if im.available(name) {
		return name
	}

	elems := strings.Split(importPath, "/")
	if len(elems) > 1 {
		if candidate := identifier(elems[len(elems)-2] + name); im.available(candidate) {
			return candidate
		}
	}

	for i := 2; ; i++ {
		if candidate := name + strconv.Itoa(i); im.available(candidate) {
			return candidate
		}
	}
}

func (im *ImportManager) available(alias string) bool {
	if alias == "" || alias == "_" || im.reserved[alias] {
		return false
	}
	_, taken := im.byAlias[alias]
	return !taken
}

// identifier drops every rune that cannot appear in a Go identifier
func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
