package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerInterfaceTemplates()
	registry.registerWrapperTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	return names
}

func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file"] = `// Code generated by mockable. DO NOT EDIT.

package {{.PackageName}}
{{if .Imports}}
{{.Imports}}{{end}}
{{range .Units}}{{.}}
{{end}}`
}

func (tr *TemplateRegistry) registerInterfaceTemplates() {
	tr.templates["interface"] = `// {{.InterfaceName | baseName}} mirrors {{.Source}}.
type {{.InterfaceName}} interface {
{{range .Methods}}	{{.Declaration}}
{{end}}}
`
}

func (tr *TemplateRegistry) registerWrapperTemplates() {
	tr.templates["wrapper"] = `// {{.WrapperName | baseName}} implements {{.InterfaceName | baseName}} by calling {{.Source}}.
type {{.WrapperName}} struct {
{{range .Embeds}}	{{.}}
{{end}}}
{{range .Methods}}
{{range .Deprecation}}{{.}}
{{end}}func ({{$.WrapperRef}}) {{.Declaration}} {
	{{if .Returns}}return {{end}}{{.Call}}
}
{{end}}{{if .Assert}}
var _ {{.InterfaceRef}} = {{.WrapperRef}}{}
{{end}}`
}
