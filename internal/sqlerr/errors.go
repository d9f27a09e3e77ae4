// Package sqlerr defines the error taxonomy shared by graph construction,
// dialect type mapping and SQL compilation.
package sqlerr

import (
	"errors"
	"fmt"
)

// Error is a fatal compile error. Compilation never produces partial SQL:
// any Error aborts the whole statement.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Construct names the offending node, member, method, format string or
	// statement shape (e.g. "String.PadLeft", "DateTime.ToString(\"yyyy\")").
	Construct string

	// Message is a human-readable description.
	Message string
}

// Code categorizes compile errors.
type Code string

const (
	// CodeUnsupported: a node kind, member, method or operator has no
	// translation for this dialect.
	CodeUnsupported Code = "UNSUPPORTED_CONSTRUCT"

	// CodeInvalidShape: an argument that must be a compile-time constant is
	// not, or arity/argument types do not match a recognized overload.
	CodeInvalidShape Code = "INVALID_STATIC_SHAPE"

	// CodeCapability: the statement needs a feature the configured build
	// number lacks (offset pagination, set operators, multi-table mutation).
	CodeCapability Code = "CAPABILITY_TIER"

	// CodeTypeMapping: a runtime type has no column type.
	CodeTypeMapping Code = "TYPE_MAPPING"

	// CodeModel: the expression graph violates a structural rule
	// (In/NotIn operand shapes, missing join predicate, empty limit).
	CodeModel Code = "MODEL_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Construct)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unsupported creates a CodeUnsupported error for construct.
func Unsupported(construct, format string, args ...any) *Error {
	return &Error{Code: CodeUnsupported, Construct: construct, Message: fmt.Sprintf(format, args...)}
}

// InvalidShape creates a CodeInvalidShape error for construct.
func InvalidShape(construct, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidShape, Construct: construct, Message: fmt.Sprintf(format, args...)}
}

// Capability creates a CodeCapability error for construct.
func Capability(construct, format string, args ...any) *Error {
	return &Error{Code: CodeCapability, Construct: construct, Message: fmt.Sprintf(format, args...)}
}

// TypeMapping creates a CodeTypeMapping error for the named type.
func TypeMapping(typeName string) *Error {
	return &Error{Code: CodeTypeMapping, Construct: typeName, Message: "no column type for runtime type"}
}

// Model creates a CodeModel error for construct.
func Model(construct, format string, args ...any) *Error {
	return &Error{Code: CodeModel, Construct: construct, Message: fmt.Sprintf(format, args...)}
}

// HasCode reports whether err (or anything it wraps) is an *Error with code.
// Uses errors.As to handle wrapped and joined errors.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsUnsupported returns true if the error is an unsupported construct error.
func IsUnsupported(err error) bool { return HasCode(err, CodeUnsupported) }

// IsInvalidShape returns true if the error is an invalid static shape error.
func IsInvalidShape(err error) bool { return HasCode(err, CodeInvalidShape) }

// IsCapability returns true if the error is a capability-tier violation.
func IsCapability(err error) bool { return HasCode(err, CodeCapability) }

// IsTypeMapping returns true if the error is a type-mapping failure.
func IsTypeMapping(err error) bool { return HasCode(err, CodeTypeMapping) }

// IsModelViolation returns true if the error is a model violation.
func IsModelViolation(err error) bool { return HasCode(err, CodeModel) }
