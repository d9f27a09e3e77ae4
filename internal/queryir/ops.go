package queryir

import "fmt"

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpLeftShift
	OpRightShift
	OpAnd // bitwise; logical when both operands are boolean
	OpOr  // bitwise; logical when both operands are boolean
	OpExclusiveOr
	OpCoalesce
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpAndAlso
	OpOrElse
	OpLike
	OpNotLike
	OpIn
	OpNotIn
)

var binaryOpNames = [...]string{
	OpAdd:                "Add",
	OpSubtract:           "Subtract",
	OpMultiply:           "Multiply",
	OpDivide:             "Divide",
	OpModulo:             "Modulo",
	OpPower:              "Power",
	OpLeftShift:          "LeftShift",
	OpRightShift:         "RightShift",
	OpAnd:                "And",
	OpOr:                 "Or",
	OpExclusiveOr:        "ExclusiveOr",
	OpCoalesce:           "Coalesce",
	OpEqual:              "Equal",
	OpNotEqual:           "NotEqual",
	OpLessThan:           "LessThan",
	OpLessThanOrEqual:    "LessThanOrEqual",
	OpGreaterThan:        "GreaterThan",
	OpGreaterThanOrEqual: "GreaterThanOrEqual",
	OpAndAlso:            "AndAlso",
	OpOrElse:             "OrElse",
	OpLike:               "Like",
	OpNotLike:            "NotLike",
	OpIn:                 "In",
	OpNotIn:              "NotIn",
}

func (op BinaryOp) String() string {
	if op > 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// ParseBinaryOp resolves an operator by its String name.
func ParseBinaryOp(name string) (BinaryOp, bool) {
	for i, n := range binaryOpNames {
		if n != "" && n == name {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// IsComparison reports whether op compares two values.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual,
		OpGreaterThan, OpGreaterThanOrEqual, OpLike, OpNotLike, OpIn, OpNotIn:
		return true
	default:
		return false
	}
}

// IsLogical reports whether op is a short-circuit boolean connective.
func (op BinaryOp) IsLogical() bool {
	return op == OpAndAlso || op == OpOrElse
}

// YieldsBool reports whether op always produces a boolean.
func (op BinaryOp) YieldsBool() bool {
	return op.IsComparison() || op.IsLogical()
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	// OpNot is logical negation on booleans and bitwise complement otherwise.
	OpNot UnaryOp = iota + 1
	OpNegate
	// OpConvert converts the operand to the node's DataType.
	OpConvert
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "Not"
	case OpNegate:
		return "Negate"
	case OpConvert:
		return "Convert"
	default:
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
}

// ParseUnaryOp resolves an operator by its String name.
func ParseUnaryOp(name string) (UnaryOp, bool) {
	for _, op := range []UnaryOp{OpNot, OpNegate, OpConvert} {
		if op.String() == name {
			return op, true
		}
	}
	return 0, false
}
