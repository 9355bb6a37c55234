package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *BaseError
		expected string
	}{
		{
			name:     "message only",
			err:      New(GenerationErrorCode, "nothing to emit"),
			expected: "nothing to emit",
		},
		{
			name:     "with location",
			err:      New(SyntaxErrorCode, "bad marker").WithLocation(SourceLocation{File: "repo.go", Line: 12}),
			expected: "repo.go:12: bad marker",
		},
		{
			name:     "with cause",
			err:      Wrap(FileSystemErrorCode, "failed to write", fmt.Errorf("disk full")),
			expected: "failed to write: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSourceLocationString(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "a.go", SourceLocation{File: "a.go"}.String())
	assert.Equal(t, "a.go:3", SourceLocation{File: "a.go", Line: 3}.String())
	assert.Equal(t, "a.go:3:7", SourceLocation{File: "a.go", Line: 3, Column: 7}.String())
}

func TestTargetErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("no required module provides package")
	err := WrapTargetError("example.com/missing", cause)

	assert.Equal(t, TargetResolutionErrorCode, err.ErrorCode())
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "example.com/missing")

	var target *TargetError
	require.True(t, stderrors.As(error(err), &target))
	assert.Equal(t, "example.com/missing", target.Target)
}

func TestMultipleErrors(t *testing.T) {
	var collected *MultipleErrors
	assert.NoError(t, collected.ErrOrNil())
	assert.Equal(t, 0, collected.Count())

	first := WrapParseError("cart.go", fmt.Errorf("expected declaration"))
	second := NewTargetError("example.com/x", "not found")
	AddToMultiple(&collected, first)
	require.Equal(t, 1, collected.Count())
	assert.Equal(t, first.Error(), collected.Error())

	AddToMultiple(&collected, second)
	require.Equal(t, 2, collected.Count())
	assert.Contains(t, collected.Error(), "multiple errors (2 total)")

	var target *TargetError
	assert.True(t, stderrors.As(collected.ErrOrNil(), &target))
	var syntax *SyntaxError
	assert.True(t, stderrors.As(collected.ErrOrNil(), &syntax))
}

func TestWrapfSuggestions(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := Wrapf(SyntaxErrorCode, cause, "skipped package %s", "example.com/shop").
		WithSuggestions("first", "second")

	assert.Equal(t, "skipped package example.com/shop: unexpected EOF", err.Error())
	assert.Equal(t, []string{"first", "second"}, err.Suggestions())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapTemplateError(t *testing.T) {
	err := WrapTemplateError("wrapper", "execute", fmt.Errorf("boom"))

	assert.Equal(t, TemplateErrorCode, err.ErrorCode())
	assert.Equal(t, "execute", err.Stage)
	assert.Equal(t, "wrapper", err.TargetFile)
}
