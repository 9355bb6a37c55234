package templates

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/toyz/mockable/internal/models"
)

// FileData is the input of the file template
type FileData struct {
	PackageName string
	Imports     string
	Units       []string // rendered unit blocks
}

// UnitData is the input of the interface and wrapper templates
type UnitData struct {
	Source        string // human description of the wrapped functions
	InterfaceName string
	WrapperName   string
	InterfaceRef  string
	WrapperRef    string
	Embeds        []string
	Methods       []MethodData
	Assert        bool
}

// MethodData is one forwarded function
type MethodData struct {
	Declaration string
	Call        string
	Deprecation []string
	Returns     bool
}

var (
	defaultRegistry     *TemplateRegistry
	defaultRegistryOnce sync.Once
)

func registry() *TemplateRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewTemplateRegistry()
	})
	return defaultRegistry
}

// NewUnitData builds template input from a unit whose facts carry final
// qualifiers and parameter names
func NewUnitData(unit *models.GenerationUnit, source string) UnitData {
	data := UnitData{
		Source:        source,
		InterfaceName: unit.InterfaceName(),
		WrapperName:   unit.WrapperName(),
		InterfaceRef:  unit.InterfaceRef(),
		WrapperRef:    unit.WrapperRef(),
		Embeds:        unit.Target.Embeds,
		Assert:        !unit.IsGeneric(),
	}

	for _, fact := range unit.Facts {
		data.Methods = append(data.Methods, MethodData{
			Declaration: RenderDeclaration(fact),
			Call:        RenderCallSite(fact),
			Deprecation: RenderDeprecation(fact),
			Returns:     !fact.ReturnsVoid(),
		})
	}

	return data
}

// RenderUnit renders the interface and wrapper blocks of one unit
func RenderUnit(data UnitData) (string, error) {
	iface, err := executeTemplate("interface", registry().MustGet("interface"), data)
	if err != nil {
		return "", err
	}

	wrapper, err := executeTemplate("wrapper", registry().MustGet("wrapper"), data)
	if err != nil {
		return "", err
	}

	return iface + "\n" + wrapper, nil
}

// RenderFile renders the complete generated file, unformatted
func RenderFile(data FileData) (string, error) {
	return executeTemplate("file", registry().MustGet("file"), data)
}

// baseName strips a type parameter list: "SampleWrapper[T any]" -> "SampleWrapper"
func baseName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"baseName": baseName,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
