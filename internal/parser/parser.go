package parser

import (
	"context"
	"go/ast"
	"go/token"

	"github.com/toyz/mockable/internal/annotations"
	"github.com/toyz/mockable/internal/facts"
	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

// PackageSource is one parsed package directory
type PackageSource struct {
	Dir     string
	Name    string // declared package name
	PkgPath string // import path
	Fset    *token.FileSet
	Files   []utils.SourceFile
}

// ASTs returns the parsed files in file name order
func (s *PackageSource) ASTs() []*ast.File {
	out := make([]*ast.File, len(s.Files))
	for i, f := range s.Files {
		out[i] = f.AST
	}
	return out
}

// Marker is a parsed //mockable::static comment and the type declaration it sits on
type Marker struct {
	TypeSpec   *ast.TypeSpec
	File       *ast.File
	Position   token.Position
	Annotation *annotations.ParsedAnnotation
}

// Result is everything discovery produced for one package
type Result struct {
	Dir         string
	PackageName string
	PkgPath     string
	Units       []*models.GenerationUnit
	Problems    []error // reported to the user; none of them stop the pass
	Markers     int
	Skipped     int      // functions left out of their wrapper
	Declared    []string // package-level identifiers of the hand-written files
}

// Parser implements MarkerDiscovery
type Parser struct {
	engine    annotations.ParserEngine
	processor *utils.FileProcessor
	resolver  TargetResolver
	reporter  *ErrorReporter
	diag      *utils.DiagnosticSystem
	selfCache *facts.Cache[facts.Entry]
}

// NewParser creates a marker discovery parser. A nil diag discards output.
func NewParser(processor *utils.FileProcessor, resolver TargetResolver, diag *utils.DiagnosticSystem) *Parser {
	if diag == nil {
		diag = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Parser{
		engine:    annotations.NewParticipleParser(annotations.DefaultRegistry()),
		processor: processor,
		resolver:  resolver,
		reporter:  NewErrorReporter(),
		diag:      diag,
		selfCache: facts.NewCache[facts.Entry](),
	}
}

// BeginPass starts a new generation; nothing cached by earlier passes is reused
func (p *Parser) BeginPass() uint64 {
	p.resolver.BeginPass()
	gen, evicted := p.selfCache.BeginPass()
	if evicted > 0 {
		p.diag.Debug("dropped %d self-wrap entries from generation %d", evicted, gen-1)
	}
	return gen
}

// ParsePackage discovers the markers of one package directory and resolves
// them into generation units. Marker problems are collected in the result;
// a directory that cannot be read or parsed and a cancelled context return
// an error.
func (p *Parser) ParsePackage(ctx context.Context, dir, pkgPath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, name, err := p.processor.ParseDirectoryFiles(dir)
	if err != nil {
		return nil, err
	}

	src := &PackageSource{
		Dir:     dir,
		Name:    name,
		PkgPath: pkgPath,
		Fset:    p.processor.GetFileReader().GetFileSet(),
		Files:   files,
	}
	result := &Result{Dir: dir, PackageName: name, PkgPath: pkgPath, Declared: declaredNames(files)}

	markers := p.FindMarkers(src, result)
	result.Markers = len(markers)

	collector := facts.NewCollector()
	for _, marker := range markers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.processMarker(ctx, src, marker, collector, result); err != nil {
			return nil, err
		}
	}

	result.Units = collector.Units()
	return result, nil
}

// declaredNames lists the package-level identifiers a generated file must not redeclare
func declaredNames(files []utils.SourceFile) []string {
	var names []string
	for _, sf := range files {
		for _, decl := range sf.AST.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil && d.Name.Name != "init" && d.Name.Name != "_" {
					names = append(names, d.Name.Name)
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						names = append(names, s.Name.Name)
					case *ast.ValueSpec:
						for _, n := range s.Names {
							if n.Name != "_" {
								names = append(names, n.Name)
							}
						}
					}
				}
			}
		}
	}
	return names
}

// FindMarkers returns the valid markers of a package in declaration order.
// Invalid, duplicated and misplaced markers are recorded as problems.
func (p *Parser) FindMarkers(src *PackageSource, result *Result) []Marker {
	var markers []Marker

	for _, sf := range src.Files {
		for _, decl := range sf.AST.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					comments := markerComments(d, ts)
					if len(comments) == 0 {
						continue
					}
					if marker, ok := p.parseMarker(src, sf.AST, ts, comments, result); ok {
						markers = append(markers, marker)
					}
				}
			case *ast.FuncDecl:
				if d.Doc == nil {
					continue
				}
				for _, c := range d.Doc.List {
					if annotations.IsMarker(c.Text) {
						result.Problems = append(result.Problems, p.reporter.ReportMarkerOnFunc(d.Name.Name, src.Fset.Position(c.Pos())))
						break
					}
				}
			}
		}
	}

	return markers
}

func (p *Parser) parseMarker(src *PackageSource, file *ast.File, ts *ast.TypeSpec, comments []*ast.Comment, result *Result) (Marker, bool) {
	typeName := ts.Name.Name
	pos := src.Fset.Position(comments[0].Pos())

	if len(comments) > 1 {
		lines := make([]int, len(comments))
		for i, c := range comments {
			lines[i] = src.Fset.Position(c.Pos()).Line
		}
		result.Problems = append(result.Problems, p.reporter.ReportDuplicateMarker(typeName, pos, lines))
		return Marker{}, false
	}

	loc := annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
	parsed, err := p.engine.ParseAnnotation(comments[0].Text, loc)
	if err != nil {
		result.Problems = append(result.Problems, p.reporter.ReportAnnotationError(typeName, pos, err))
		return Marker{}, false
	}

	return Marker{TypeSpec: ts, File: file, Position: pos, Annotation: parsed}, true
}

// markerComments collects marker lines attached to a type spec: the
// declaration doc of an unparenthesized decl, the spec doc and the line comment
func markerComments(decl *ast.GenDecl, spec *ast.TypeSpec) []*ast.Comment {
	groups := []*ast.CommentGroup{spec.Doc, spec.Comment}
	if !decl.Lparen.IsValid() {
		groups = append([]*ast.CommentGroup{decl.Doc}, groups...)
	}

	var out []*ast.Comment
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if annotations.IsMarker(c.Text) {
				out = append(out, c)
			}
		}
	}
	return out
}

// TargetOf builds the generation target a marker asks for
func TargetOf(src *PackageSource, m Marker) models.GenerationTarget {
	a := m.Annotation
	target := models.GenerationTarget{
		Mode:          models.ExternalWrap,
		PkgPath:       a.GetString(annotations.ParamTarget),
		TypeName:      a.GetString(annotations.ParamType),
		Alias:         a.GetString(annotations.ParamName),
		Include:       a.GetStringSlice(annotations.ParamInclude),
		Exclude:       a.GetStringSlice(annotations.ParamExclude),
		Position:      m.Position,
		AnnotatedType: m.TypeSpec.Name.Name,
		AnnotatedDir:  src.Dir,
	}
	if target.PkgPath == "" {
		target.Mode = models.SelfWrap
		target.PkgPath = src.PkgPath
		target.PkgName = src.Name
		target.TypeName = m.TypeSpec.Name.Name
	}
	return target
}

func (p *Parser) processMarker(ctx context.Context, src *PackageSource, m Marker, collector *facts.Collector, result *Result) error {
	target := TargetOf(src, m)

	var entry facts.Entry
	var err error
	if target.Mode == models.SelfWrap {
		entry, err = p.selfCache.GetOrCompute(facts.TargetKey(target), src.PkgPath, func() (facts.Entry, error) {
			return ScanSelf(src, m.File, m.TypeSpec, target)
		})
	} else {
		entry, err = p.resolver.Resolve(ctx, target, src.Dir, src.PkgPath)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		result.Problems = append(result.Problems, p.reporter.ReportUnresolvedTarget(target, err))
		return nil
	}

	for _, skip := range entry.Skipped {
		p.diag.Verbose("%s: %s skipped: %v", m.Position, target.Identity(), skip)
	}
	result.Skipped += len(entry.Skipped)

	if len(entry.Facts) == 0 {
		p.diag.Verbose("%s: no eligible functions for %s, declaration '%s' skipped", m.Position, target.Identity(), target.AnnotatedType)
		return nil
	}

	// cached entries are shared between markers; naming and location stay per marker
	unitTarget := entry.Target
	unitTarget.Alias = target.Alias
	unitTarget.Position = target.Position
	unitTarget.AnnotatedType = target.AnnotatedType
	unitTarget.AnnotatedDir = target.AnnotatedDir

	added := collector.Add(unitTarget, entry.Facts...)
	p.diag.Debug("%s: %d functions from %s (%d new)", m.Position, len(entry.Facts), target.Identity(), added)
	return nil
}
