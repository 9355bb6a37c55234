package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParserEngine interface defines the core parsing functionality
type ParserEngine interface {
	ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error)
	ValidateAnnotation(annotation *ParsedAnnotation) error
}

// Marker is the grammar root: //mockable::<kind> [-Param[=value]]...
type Marker struct {
	Pos    lexer.Position
	Kind   string         `parser:"Comment 'mockable' Separator @Ident"`
	Params []*MarkerParam `parser:"@@*"`
}

// MarkerParam is a single -Name or -Name=value item
type MarkerParam struct {
	Pos   lexer.Position
	Name  string       `parser:"@Flag"`
	Value *MarkerValue `parser:"( Equals @@ )?"`
}

// MarkerValue holds either a quoted string or a bare token running up to the next space
type MarkerValue struct {
	String *string `parser:"  @String"`
	Raw    *string `parser:"| @Raw"`
}

// Text returns the value with quotes removed
func (v *MarkerValue) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return *v.String
	case v.Raw != nil:
		return *v.Raw
	default:
		return ""
	}
}

// After '=' the lexer switches state so import paths like github.com/x/y and
// glob lists like Parse*,Format* stay one token.
var markerLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Comment", Pattern: `//`},
		{Name: "Separator", Pattern: `::`},
		{Name: "Flag", Pattern: `-[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Equals", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	},
	"Value": {
		{Name: "String", Pattern: `"(\\"|[^"])*"`, Action: lexer.Pop()},
		{Name: "Raw", Pattern: `[^\s"]+`, Action: lexer.Pop()},
	},
})

// ParticipleParser parses marker comments with a participle grammar and
// validates them against the registered schemas
type ParticipleParser struct {
	parser    *participle.Parser[Marker]
	registry  AnnotationRegistry
	validator SchemaValidator
}

// NewParticipleParser creates a new parser using participle
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	parser := participle.MustBuild[Marker](
		participle.Lexer(markerLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)

	return &ParticipleParser{
		parser:    parser,
		registry:  registry,
		validator: NewValidator(),
	}
}

// ParseAnnotation parses and validates a single marker comment
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	marker, err := p.parser.ParseString(location.File, raw)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	annotationType, err := ParseAnnotationType(marker.Kind)
	if err != nil {
		return nil, &SyntaxError{
			Msg:  fmt.Sprintf("unknown marker 'mockable::%s'", marker.Kind),
			Loc:  location,
			Hint: "Use //mockable::static",
		}
	}

	if p.registry != nil && !p.registry.IsRegistered(annotationType) {
		return nil, &SchemaError{
			Msg: fmt.Sprintf("annotation type '%s' is not registered", annotationType),
			Loc: location,
		}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        raw,
	}

	for _, param := range marker.Params {
		name := strings.TrimPrefix(param.Name, "-")
		if _, dup := parsed.Parameters[name]; dup {
			return nil, &ValidationError{
				Parameter: name,
				Expected:  "a single occurrence",
				Actual:    "repeated parameter",
				Loc:       offset(location, param.Pos),
				Hint:      fmt.Sprintf("Remove the extra -%s", name),
			}
		}
		if param.Value == nil {
			parsed.Parameters[name] = true
			continue
		}
		parsed.Parameters[name] = param.Value.Text()
	}

	if err := p.ValidateAnnotation(parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}

// ValidateAnnotation converts raw values to their declared types and checks them against the schema
func (p *ParticipleParser) ValidateAnnotation(annotation *ParsedAnnotation) error {
	if p.registry == nil {
		return nil
	}

	schema, err := p.registry.GetSchema(annotation.Type)
	if err != nil {
		return &SchemaError{Msg: err.Error(), Loc: annotation.Location}
	}

	if err := p.validator.TransformParameters(annotation, schema); err != nil {
		return err
	}
	if err := p.validator.ApplyDefaults(annotation, schema); err != nil {
		return err
	}
	return p.validator.Validate(annotation, schema)
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return &SyntaxError{
			Msg:  perr.Message(),
			Loc:  offset(location, perr.Position()),
			Hint: "Use format: //mockable::static [-Target=<import path>] [-Type=<Type>] [-Name=<Name>] [-Include=<globs>] [-Exclude=<globs>]",
		}
	}
	return &SyntaxError{Msg: err.Error(), Loc: location}
}

// offset maps a position inside the comment text onto the source file
func offset(location SourceLocation, pos lexer.Position) SourceLocation {
	if pos.Column <= 0 {
		return location
	}
	location.Column += pos.Column - 1
	return location
}
