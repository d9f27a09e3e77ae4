package querysql

import "fmt"

// OperatorClass is the outermost operator of a rendered expression. Parents
// use it to decide whether a child needs parentheses.
type OperatorClass int

const (
	// ClassDefault is an atomic operand: a column, a placeholder, a literal.
	ClassDefault OperatorClass = iota
	// ClassCall is a function call or a self-delimiting case...end.
	ClassCall
	// ClassSubquery is bare SELECT text; it is parenthesized wherever it is
	// used as an operand.
	ClassSubquery

	ClassNegate
	ClassBitNot

	ClassMultiply
	ClassDivide
	ClassModulo

	ClassAdd
	ClassSubtract
	ClassBitAnd
	ClassBitOr
	ClassBitXor

	ClassEqual
	ClassNotEqual
	ClassLessThan
	ClassLessThanOrEqual
	ClassGreaterThan
	ClassGreaterThanOrEqual
	ClassLike
	ClassNotLike
	ClassIn
	ClassNotIn

	ClassNot
	ClassAndAlso
	ClassOrElse
)

var classNames = [...]string{
	ClassDefault:            "Default",
	ClassCall:               "Call",
	ClassSubquery:           "Subquery",
	ClassNegate:             "Negate",
	ClassBitNot:             "BitNot",
	ClassMultiply:           "Multiply",
	ClassDivide:             "Divide",
	ClassModulo:             "Modulo",
	ClassAdd:                "Add",
	ClassSubtract:           "Subtract",
	ClassBitAnd:             "BitAnd",
	ClassBitOr:              "BitOr",
	ClassBitXor:             "BitXor",
	ClassEqual:              "Equal",
	ClassNotEqual:           "NotEqual",
	ClassLessThan:           "LessThan",
	ClassLessThanOrEqual:    "LessThanOrEqual",
	ClassGreaterThan:        "GreaterThan",
	ClassGreaterThanOrEqual: "GreaterThanOrEqual",
	ClassLike:               "Like",
	ClassNotLike:            "NotLike",
	ClassIn:                 "In",
	ClassNotIn:              "NotIn",
	ClassNot:                "Not",
	ClassAndAlso:            "AndAlso",
	ClassOrElse:             "OrElse",
}

func (c OperatorClass) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("OperatorClass(%d)", int(c))
}

// binding strength; higher binds tighter. Bitwise operators share the
// additive level, as they do in T-SQL.
func rank(c OperatorClass) int {
	switch c {
	case ClassDefault, ClassCall, ClassSubquery:
		return 100
	case ClassNegate, ClassBitNot:
		return 90
	case ClassMultiply, ClassDivide, ClassModulo:
		return 80
	case ClassAdd, ClassSubtract, ClassBitAnd, ClassBitOr, ClassBitXor:
		return 70
	case ClassEqual, ClassNotEqual, ClassLessThan, ClassLessThanOrEqual,
		ClassGreaterThan, ClassGreaterThanOrEqual, ClassLike, ClassNotLike, ClassIn, ClassNotIn:
		return 60
	case ClassNot:
		return 50
	case ClassAndAlso:
		return 40
	case ClassOrElse:
		return 30
	default:
		return 0
	}
}

// associative classes may drop parentheses around a right operand of the
// same class: a + (b + c) == a + b + c.
func associative(c OperatorClass) bool {
	switch c {
	case ClassAdd, ClassMultiply, ClassBitAnd, ClassBitOr, ClassBitXor, ClassAndAlso, ClassOrElse:
		return true
	default:
		return false
	}
}

// NeedsParens reports whether a child expression of class child must be
// parenthesized when it is an operand of parent. right is true when the child
// is the right operand (or the sole operand of a prefix operator).
//
// Rules, in order:
//  1. Subqueries are always parenthesized.
//  2. Atomic operands and calls never are.
//  3. A looser child is parenthesized; a tighter one is not.
//  4. At equal strength the left operand is not; the right operand is unless
//     child and parent are the same associative operator.
func NeedsParens(child, parent OperatorClass, right bool) bool {
	if child == ClassSubquery {
		return true
	}
	cr, pr := rank(child), rank(parent)
	if cr == 100 {
		return false
	}
	if cr != pr {
		return cr < pr
	}
	if !right {
		return false
	}
	return !(child == parent && associative(parent))
}

// Expr is a rendered fragment and the class of its outermost operator.
type Expr struct {
	SQL   string
	Class OperatorClass
}

// wrap returns e's text, parenthesized when it is an operand of parent.
func wrap(e Expr, parent OperatorClass, right bool) string {
	if NeedsParens(e.Class, parent, right) {
		return "(" + e.SQL + ")"
	}
	return e.SQL
}

// arg returns e's text as a function argument: only subqueries need
// parentheses there.
func arg(e Expr) string {
	if e.Class == ClassSubquery {
		return "(" + e.SQL + ")"
	}
	return e.SQL
}
