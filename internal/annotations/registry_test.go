package annotations

import (
	"errors"
	"testing"
)

func TestRegistryBuiltins(t *testing.T) {
	registry := NewRegistry()
	if err := RegisterBuiltinSchemas(registry); err != nil {
		t.Fatalf("RegisterBuiltinSchemas failed: %v", err)
	}

	if !registry.IsRegistered(StaticAnnotation) {
		t.Fatal("static annotation should be registered")
	}

	schema, err := registry.GetSchema(StaticAnnotation)
	if err != nil {
		t.Fatalf("GetSchema failed: %v", err)
	}
	for _, name := range []string{ParamTarget, ParamType, ParamName, ParamInclude, ParamExclude} {
		if _, ok := schema.Parameters[name]; !ok {
			t.Errorf("schema is missing parameter %s", name)
		}
	}
	if len(schema.Validators) == 0 {
		t.Error("static schema should carry its cross-parameter validator")
	}

	types := registry.ListTypes()
	if len(types) != 1 || types[0] != StaticAnnotation {
		t.Errorf("ListTypes = %v", types)
	}
}

func TestRegistryRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema AnnotationSchema
	}{
		{
			name:   "empty parameter name",
			schema: AnnotationSchema{Type: StaticAnnotation, Parameters: map[string]ParameterSpec{"": {Type: StringType}}},
		},
		{
			name:   "unknown parameter type",
			schema: AnnotationSchema{Type: StaticAnnotation, Parameters: map[string]ParameterSpec{"X": {Type: ParameterType(42)}}},
		},
		{
			name:   "default of wrong type",
			schema: AnnotationSchema{Type: StaticAnnotation, Parameters: map[string]ParameterSpec{"X": {Type: BoolType, DefaultValue: "yes"}}},
		},
		{
			name:   "required with default",
			schema: AnnotationSchema{Type: StaticAnnotation, Parameters: map[string]ParameterSpec{"X": {Type: StringType, Required: true, DefaultValue: "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(StaticAnnotation, tt.schema)
			var regErr *RegistrationError
			if !errors.As(err, &regErr) {
				t.Fatalf("expected RegistrationError, got %v", err)
			}
		})
	}
}

func TestRegistryDuplicateAndMismatch(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(StaticAnnotation, StaticAnnotationSchema); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register(StaticAnnotation, StaticAnnotationSchema); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	if err := NewRegistry().Register(AnnotationType(7), StaticAnnotationSchema); err == nil {
		t.Error("expected type mismatch to fail")
	}

	if _, err := NewRegistry().GetSchema(StaticAnnotation); err == nil {
		t.Error("expected lookup in an empty registry to fail")
	}
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	if !DefaultRegistry().IsRegistered(StaticAnnotation) {
		t.Error("default registry should include builtin schemas")
	}
}

func TestConvertToStringSlice(t *testing.T) {
	got, err := ConvertToStringSlice(" Parse* , ,Format*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Parse*" || got[1] != "Format*" {
		t.Errorf("got %v", got)
	}

	if _, err := ConvertToStringSlice(3); err == nil {
		t.Error("expected error for non-string input")
	}
}
