package annotations

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func newTestParser(t *testing.T) *ParticipleParser {
	t.Helper()
	registry := NewRegistry()
	if err := RegisterBuiltinSchemas(registry); err != nil {
		t.Fatalf("Failed to register builtin schemas: %v", err)
	}
	return NewParticipleParser(registry)
}

func TestParticipleParserStatic(t *testing.T) {
	parser := newTestParser(t)
	location := SourceLocation{File: "repo.go", Line: 12, Column: 1}

	tests := []struct {
		name     string
		input    string
		expected map[string]interface{}
	}{
		{
			name:     "self wrap",
			input:    "//mockable::static",
			expected: map[string]interface{}{},
		},
		{
			name:     "standard library target",
			input:    "//mockable::static -Target=strconv",
			expected: map[string]interface{}{"Target": "strconv"},
		},
		{
			name:     "module target with type",
			input:    "//mockable::static -Target=github.com/jmoiron/sqlx -Type=DB",
			expected: map[string]interface{}{"Target": "github.com/jmoiron/sqlx", "Type": "DB"},
		},
		{
			name:     "quoted value",
			input:    `//mockable::static -Target="math/rand" -Name="MathRand"`,
			expected: map[string]interface{}{"Target": "math/rand", "Name": "MathRand"},
		},
		{
			name:  "glob lists",
			input: "//mockable::static -Target=os -Include=Read*,Write* -Exclude=ReadDir",
			expected: map[string]interface{}{
				"Target":  "os",
				"Include": []string{"Read*", "Write*"},
				"Exclude": []string{"ReadDir"},
			},
		},
		{
			name:     "leading space after slashes",
			input:    "  // mockable::static -Target=strings  ",
			expected: map[string]interface{}{"Target": "strings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.ParseAnnotation(tt.input, location)
			if err != nil {
				t.Fatalf("ParseAnnotation failed: %v", err)
			}
			if parsed.Type != StaticAnnotation {
				t.Errorf("expected static annotation, got %v", parsed.Type)
			}
			if !reflect.DeepEqual(parsed.Parameters, tt.expected) {
				t.Errorf("parameters = %#v, want %#v", parsed.Parameters, tt.expected)
			}
			if parsed.Raw != strings.TrimSpace(tt.input) {
				t.Errorf("raw = %q", parsed.Raw)
			}
			if parsed.Location != location {
				t.Errorf("location = %v", parsed.Location)
			}
		})
	}
}

func TestParticipleParserErrors(t *testing.T) {
	parser := newTestParser(t)
	location := SourceLocation{File: "repo.go", Line: 3, Column: 1}

	tests := []struct {
		name     string
		input    string
		code     ErrorCode
		contains string
	}{
		{"unknown kind", "//mockable::dynamic", SyntaxErrorCode, "unknown marker"},
		{"missing kind", "//mockable::", SyntaxErrorCode, ""},
		{"wrong prefix", "//gomock::static", SyntaxErrorCode, ""},
		{"missing value", "//mockable::static -Target=", SyntaxErrorCode, ""},
		{"positional argument", "//mockable::static strconv", SyntaxErrorCode, ""},
		{"unknown parameter", "//mockable::static -Mode=x", ValidationErrorCode, "unknown parameter 'Mode'"},
		{"flag without value", "//mockable::static -Target", ValidationErrorCode, "Target"},
		{"repeated parameter", "//mockable::static -Target=os -Target=io", ValidationErrorCode, "repeated"},
		{"bad import path", `//mockable::static -Target="a b"`, ValidationErrorCode, "Target"},
		{"unexported type", "//mockable::static -Target=os -Type=file", ValidationErrorCode, "must be exported"},
		{"bad name", "//mockable::static -Name=1x", ValidationErrorCode, "Name"},
		{"bad glob", "//mockable::static -Target=os -Include=[x", ValidationErrorCode, "Include"},
		{"type without target", "//mockable::static -Type=DB", SchemaErrorCode, "requires -Target"},
		{"include and exclude overlap", "//mockable::static -Target=os -Include=Read* -Exclude=Read*", SchemaErrorCode, "both included and excluded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.input, location)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}

			if !hasCode(err, tt.code) {
				t.Errorf("expected %s, got %T: %v", tt.code, err, err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error to contain %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestParticipleParserSyntaxLocation(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.ParseAnnotation("//mockable::static -Target=os ,", SourceLocation{File: "a.go", Line: 7, Column: 1})

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if syntaxErr.Loc.File != "a.go" || syntaxErr.Loc.Line != 7 {
		t.Errorf("expected error on a.go:7, got %v", syntaxErr.Loc)
	}
	if syntaxErr.Suggestion() == "" {
		t.Error("expected a usage hint")
	}
}

func TestIsMarker(t *testing.T) {
	tests := map[string]bool{
		"//mockable::static":             true,
		"// mockable::static -Target=os": true,
		"//mockable::anything":           true,
		"// Repository stores students":  false,
		"/* mockable::static */":         false,
		"//go:generate mockable":         false,
		"//nolint:mockable::static":      false,
	}

	for input, want := range tests {
		if got := IsMarker(input); got != want {
			t.Errorf("IsMarker(%q) = %v, want %v", input, got, want)
		}
	}
}

func hasCode(err error, code ErrorCode) bool {
	var annErr AnnotationError
	if errors.As(err, &annErr) && annErr.Code() == code {
		return true
	}
	var multi *MultipleValidationErrors
	return errors.As(err, &multi) && multi.HasType(code)
}
