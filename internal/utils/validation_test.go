package utils

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name:     "with field",
			err:      ValidationError{Field: "Target", Value: "", Message: "cannot be empty"},
			expected: "validation error for field 'Target': cannot be empty",
		},
		{
			name:     "without field",
			err:      ValidationError{Message: "general error"},
			expected: "validation error: general error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNotEmpty(t *testing.T) {
	validator := NotEmpty("Name")

	if err := validator("Rand"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validator(""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestIsValidGoIdentifier(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"Parse", false},
		{"_x", false},
		{"sqlx2", false},
		{"", true},
		{"2fast", true},
		{"with-dash", true},
		{"func", true},
	}

	validator := IsValidGoIdentifier("Name")
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validator(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsValidGoIdentifier(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestIsExportedIdentifier(t *testing.T) {
	validator := IsExportedIdentifier("Type")

	if err := validator("DB"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := validator("db")
	if err == nil || !strings.Contains(err.Error(), "must be exported") {
		t.Errorf("expected export error, got %v", err)
	}
}

func TestIsImportPath(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"strconv", false},
		{"math/rand", false},
		{"github.com/jmoiron/sqlx", false},
		{"gopkg.in/yaml.v3", false},
		{"", true},
		{"github.com/has space/x", true},
		{"/abs/path", true},
	}

	validator := IsImportPath("Target")
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validator(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsImportPath(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEach(t *testing.T) {
	validator := ValidateEach("Include", IsGlobPattern("Include"))

	if err := validator([]string{"Parse*", "Format?", "Append{Int,Uint}"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := validator([]string{"Parse*", "[oops"})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if !strings.Contains(err.Error(), "Include[1]") {
		t.Errorf("expected indexed field name, got %v", err)
	}
}

func TestValidatorChain(t *testing.T) {
	chain := NewValidatorChain(NotEmpty("Name"), IsValidGoIdentifier("Name"))

	if err := chain.Validate("CryptoRand"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := chain.Validate("")
	if err == nil || !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("expected first validator to fail, got %v", err)
	}

	if err := chain.Validate("crypto/rand"); err == nil {
		t.Error("expected identifier validation to fail")
	}
}
