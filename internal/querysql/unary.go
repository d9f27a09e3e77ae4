package querysql

import (
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

func (s *Session) unaryValue(n *queryir.Unary) (Expr, error) {
	switch n.Op {
	case queryir.OpNot:
		if n.DataType.IsBool() {
			return s.predicateAsValue(n)
		}
		x, err := s.value(n.Operand)
		if err != nil {
			return Expr{}, err
		}
		return Expr{SQL: "~" + wrap(x, ClassBitNot, true), Class: ClassBitNot}, nil
	case queryir.OpNegate:
		x, err := s.value(n.Operand)
		if err != nil {
			return Expr{}, err
		}
		return Expr{SQL: "-" + wrap(x, ClassNegate, true), Class: ClassNegate}, nil
	case queryir.OpConvert:
		x, err := s.value(n.Operand)
		if err != nil {
			return Expr{}, err
		}
		return s.convert(x, n.Operand.Type(), n.DataType)
	default:
		return Expr{}, sqlerr.Unsupported(n.Op.String(), "unknown unary operator")
	}
}

// convert renders convert(<column type>, x). A conversion between types that
// share a column type (nullable lifting, enum to int) is dropped.
func (s *Session) convert(x Expr, from, to *ir.Type) (Expr, error) {
	target, err := s.dialect.ColumnType(to)
	if err != nil {
		return Expr{}, err
	}
	if source, err := s.dialect.ColumnType(from); err == nil && source == target {
		return x, nil
	}
	return Expr{SQL: "convert(" + target + ", " + arg(x) + ")", Class: ClassCall}, nil
}

func (s *Session) unaryPredicate(n *queryir.Unary) (Expr, error) {
	switch n.Op {
	case queryir.OpNot:
		return s.negate(n.Operand)
	case queryir.OpConvert:
		if n.Operand.Type().IsBool() {
			return s.predicate(n.Operand)
		}
		return s.bitIs(n, "1")
	default:
		return Expr{}, sqlerr.Unsupported(n.Op.String(), "no predicate form")
	}
}

var negatedComparison = map[queryir.BinaryOp]queryir.BinaryOp{
	queryir.OpEqual:              queryir.OpNotEqual,
	queryir.OpNotEqual:           queryir.OpEqual,
	queryir.OpLessThan:           queryir.OpGreaterThanOrEqual,
	queryir.OpGreaterThanOrEqual: queryir.OpLessThan,
	queryir.OpGreaterThan:        queryir.OpLessThanOrEqual,
	queryir.OpLessThanOrEqual:    queryir.OpGreaterThan,
	queryir.OpLike:               queryir.OpNotLike,
	queryir.OpNotLike:            queryir.OpLike,
	queryir.OpIn:                 queryir.OpNotIn,
	queryir.OpNotIn:              queryir.OpIn,
}

// negate renders the predicate form of Not(x):
//   - Not(Not(x)) is x
//   - comparisons flip their operator
//   - string tests and HasValue have dedicated negated forms
//   - other native predicates become not (p)
//   - bit-valued nodes become <value> = 0
func (s *Session) negate(x queryir.Field) (Expr, error) {
	if !x.Type().IsBool() {
		return Expr{}, sqlerr.Unsupported(x.Kind().String(), "logical not of non-boolean %s", x.Type())
	}
	switch n := x.(type) {
	case *queryir.Unary:
		if n.Op == queryir.OpNot {
			return s.predicate(n.Operand)
		}
	case *queryir.Binary:
		if flipped, ok := negatedComparison[n.Op]; ok {
			return s.binaryPredicate(flipped, n.Left, n.Right)
		}
		if n.Op.IsLogical() || n.Op == queryir.OpAnd || n.Op == queryir.OpOr || n.Op == queryir.OpExclusiveOr {
			return s.notPredicate(x)
		}
	case *queryir.MethodCall:
		if hasNegatedForm(n.ID) {
			return s.methodPredicate(n, true)
		}
	case *queryir.MemberAccess:
		if n.ID == queryir.NullableHasValue {
			return s.isNull(n.Receiver, true)
		}
	}
	return s.bitIs(x, "0")
}

func (s *Session) notPredicate(x queryir.Field) (Expr, error) {
	p, err := s.predicate(x)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: "not (" + p.SQL + ")", Class: ClassNot}, nil
}
