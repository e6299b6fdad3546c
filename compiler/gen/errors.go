package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("relgen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("relgen: missing configuration")
	// ErrGenerationFailed indicates an artifact generation failure.
	ErrGenerationFailed = errors.New("relgen: generation failed")

	// ErrInvalidArgument indicates a malformed relationship directive argument.
	ErrInvalidArgument = errors.New("relgen: invalid directive argument")
	// ErrTypeMismatch indicates a connection field that is missing, not a
	// scalar, or of the wrong type or arity.
	ErrTypeMismatch = errors.New("relgen: type mismatch")
	// ErrNotModel indicates a relation on or to a type without @model.
	ErrNotModel = errors.New("relgen: not a model")
	// ErrBidirectionality indicates a relation without its required
	// counterpart.
	ErrBidirectionality = errors.New("relgen: invalid relation pair")
	// ErrUnsupported indicates a combination of directives, stores or
	// features that cannot be compiled.
	ErrUnsupported = errors.New("relgen: unsupported relation")
)

// SchemaError represents a schema definition error.
type SchemaError struct {
	Type    string // Type name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("relgen: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("relgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("relgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// ErrorKind classifies a DirectiveError.
type ErrorKind int

// Directive error kinds.
const (
	KindArgument ErrorKind = iota + 1
	KindTypeMismatch
	KindModel
	KindBidirectionality
	KindUnsupported
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindArgument:
		return "argument"
	case KindTypeMismatch:
		return "type mismatch"
	case KindModel:
		return "model"
	case KindBidirectionality:
		return "bidirectionality"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// sentinel returns the sentinel error matching the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindArgument:
		return ErrInvalidArgument
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindModel:
		return ErrNotModel
	case KindBidirectionality:
		return ErrBidirectionality
	case KindUnsupported:
		return ErrUnsupported
	default:
		return nil
	}
}

// DirectiveError represents an invalid relationship directive.
type DirectiveError struct {
	Kind      ErrorKind
	Directive string // Directive name without "@"
	Type      string // Owning type
	Field     string // Relation field
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	var b strings.Builder
	b.WriteString("relgen: ")
	if e.Directive != "" {
		b.WriteString("@")
		b.WriteString(e.Directive)
		b.WriteString(" ")
	}
	b.WriteString("error")
	if e.Type != "" {
		b.WriteString(" on ")
		b.WriteString(e.Type)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DirectiveError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrInvalidSchema or the sentinel of the
// error kind.
func (e *DirectiveError) Is(target error) bool {
	return target == ErrInvalidSchema || (target != nil && target == e.Kind.sentinel())
}

// NewDirectiveError creates a new DirectiveError.
func NewDirectiveError(kind ErrorKind, directive, typeName, fieldName, message string) *DirectiveError {
	return &DirectiveError{
		Kind:      kind,
		Directive: directive,
		Type:      typeName,
		Field:     fieldName,
		Message:   message,
	}
}

// Errorf creates a DirectiveError with a formatted message.
func Errorf(kind ErrorKind, directive, typeName, fieldName, format string, args ...any) *DirectiveError {
	return NewDirectiveError(kind, directive, typeName, fieldName, fmt.Sprintf(format, args...))
}

// GenerationError represents an artifact generation error.
type GenerationError struct {
	Phase   string // "mutate", "prepare", "write", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("relgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsDirectiveError reports whether the error is a DirectiveError.
func IsDirectiveError(err error) bool {
	var dirErr *DirectiveError
	return errors.As(err, &dirErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// KindOf returns the kind of a DirectiveError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var dirErr *DirectiveError
	if errors.As(err, &dirErr) {
		return dirErr.Kind
	}
	return 0
}
