package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("Post", "comments", "unknown type", cause)

		assert.Contains(t, err.Error(), "relgen: schema error")
		assert.Contains(t, err.Error(), "type Post")
		assert.Contains(t, err.Error(), "field comments")
		assert.Contains(t, err.Error(), "unknown type")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with type only", func(t *testing.T) {
		err := &SchemaError{Type: "Post"}
		assert.Contains(t, err.Error(), "type Post")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Post", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrInvalidSchema", func(t *testing.T) {
		err := NewSchemaError("Post", "", "", nil)
		assert.True(t, err.Is(ErrInvalidSchema))
	})

	t.Run("IsSchemaError helper", func(t *testing.T) {
		err := NewSchemaError("Post", "slug", "test", nil)
		assert.True(t, IsSchemaError(err))
		assert.False(t, IsSchemaError(errors.New("other")))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Store", "redis", "unknown store")

		assert.Contains(t, err.Error(), "relgen: config error")
		assert.Contains(t, err.Error(), "Store")
		assert.Contains(t, err.Error(), "redis")
		assert.Contains(t, err.Error(), "unknown store")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Target", nil, "cannot be empty")

		assert.Contains(t, err.Error(), "Target")
		assert.Contains(t, err.Error(), "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, err.Is(ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestDirectiveError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("field not found")
		err := NewDirectiveError(KindTypeMismatch, "hasMany", "Author", "books", "bad reference")
		err.Cause = cause

		assert.Equal(t, "relgen: @hasMany error on Author.books: bad reference: field not found", err.Error())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Error message without directive", func(t *testing.T) {
		err := &DirectiveError{Kind: KindBidirectionality, Type: "Post", Message: "x"}
		assert.Equal(t, "relgen: error on Post: x", err.Error())
	})

	t.Run("Is matches kind sentinel and ErrInvalidSchema", func(t *testing.T) {
		tests := []struct {
			kind     ErrorKind
			sentinel error
		}{
			{KindArgument, ErrInvalidArgument},
			{KindTypeMismatch, ErrTypeMismatch},
			{KindModel, ErrNotModel},
			{KindBidirectionality, ErrBidirectionality},
			{KindUnsupported, ErrUnsupported},
		}
		for _, tt := range tests {
			t.Run(tt.kind.String(), func(t *testing.T) {
				err := Errorf(tt.kind, "hasOne", "A", "b", "n=%d", 1)
				assert.True(t, errors.Is(err, tt.sentinel))
				assert.True(t, errors.Is(err, ErrInvalidSchema))
				assert.Equal(t, tt.kind, KindOf(fmt.Errorf("wrapped: %w", err)))
				for _, other := range []error{ErrInvalidArgument, ErrTypeMismatch, ErrNotModel, ErrBidirectionality, ErrUnsupported} {
					if other != tt.sentinel {
						assert.False(t, errors.Is(err, other))
					}
				}
			})
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := &DirectiveError{}
		assert.False(t, errors.Is(err, nil))
		assert.Equal(t, "unknown", err.Kind.String())
		assert.Zero(t, KindOf(errors.New("other")))
	})

	t.Run("IsDirectiveError helper", func(t *testing.T) {
		assert.True(t, IsDirectiveError(Errorf(KindModel, "belongsTo", "A", "b", "not a model")))
		assert.False(t, IsDirectiveError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("write failed")
		err := NewGenerationError("write", "tables.json", "cannot write file", cause)

		assert.Contains(t, err.Error(), "relgen: generation error")
		assert.Contains(t, err.Error(), "phase write")
		assert.Contains(t, err.Error(), "file: tables.json")
		assert.Contains(t, err.Error(), "cannot write file")
		assert.Contains(t, err.Error(), "write failed")
	})

	t.Run("Error message with phase only", func(t *testing.T) {
		err := &GenerationError{Phase: "mutate"}
		assert.Contains(t, err.Error(), "phase mutate")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("io error")
		err := NewGenerationError("write", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrGenerationFailed", func(t *testing.T) {
		err := NewGenerationError("write", "", "", nil)
		assert.True(t, err.Is(ErrGenerationFailed))
	})
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "relgen: invalid schema", ErrInvalidSchema.Error())
	assert.Equal(t, "relgen: missing configuration", ErrMissingConfig.Error())
	assert.Equal(t, "relgen: generation failed", ErrGenerationFailed.Error())
	assert.Equal(t, "relgen: not a model", ErrNotModel.Error())
}

func TestErrorTypeChecking(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		isSchema    bool
		isConfig    bool
		isDirective bool
		isGen       bool
	}{
		{
			name:     "SchemaError",
			err:      NewSchemaError("Post", "", "", nil),
			isSchema: true,
		},
		{
			name:     "ConfigError",
			err:      NewConfigError("Target", nil, ""),
			isConfig: true,
		},
		{
			name:        "DirectiveError",
			err:         NewDirectiveError(KindArgument, "hasOne", "Post", "author", ""),
			isDirective: true,
		},
		{
			name:  "GenerationError",
			err:   NewGenerationError("write", "", "", nil),
			isGen: true,
		},
		{
			name: "Other error",
			err:  errors.New("other"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isSchema, IsSchemaError(tt.err))
			assert.Equal(t, tt.isConfig, IsConfigError(tt.err))
			assert.Equal(t, tt.isDirective, IsDirectiveError(tt.err))
			assert.Equal(t, tt.isGen, IsGenerationError(tt.err))
		})
	}
}

func TestErrorsAs(t *testing.T) {
	t.Run("As DirectiveError", func(t *testing.T) {
		err := fmt.Errorf("compile: %w", NewDirectiveError(KindUnsupported, "manyToMany", "Post", "tags", "self relation"))
		var dirErr *DirectiveError
		require.True(t, errors.As(err, &dirErr))
		assert.Equal(t, "Post", dirErr.Type)
		assert.Equal(t, "tags", dirErr.Field)
		assert.Equal(t, "manyToMany", dirErr.Directive)
	})

	t.Run("As GenerationError", func(t *testing.T) {
		err := NewGenerationError("write", "schema.graphql", "failed", nil)
		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "write", genErr.Phase)
		assert.Equal(t, "schema.graphql", genErr.File)
	})
}
