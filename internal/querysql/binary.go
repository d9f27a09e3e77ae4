package querysql

import (
	"strings"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

type infix struct {
	symbol string
	class  OperatorClass
}

var arithmetic = map[queryir.BinaryOp]infix{
	queryir.OpAdd:         {"+", ClassAdd},
	queryir.OpSubtract:    {"-", ClassSubtract},
	queryir.OpMultiply:    {"*", ClassMultiply},
	queryir.OpDivide:      {"/", ClassDivide},
	queryir.OpModulo:      {"%", ClassModulo},
	queryir.OpAnd:         {"&", ClassBitAnd},
	queryir.OpOr:          {"|", ClassBitOr},
	queryir.OpExclusiveOr: {"^", ClassBitXor},
}

var comparison = map[queryir.BinaryOp]infix{
	queryir.OpEqual:              {"=", ClassEqual},
	queryir.OpNotEqual:           {"!=", ClassNotEqual},
	queryir.OpLessThan:           {"<", ClassLessThan},
	queryir.OpLessThanOrEqual:    {"<=", ClassLessThanOrEqual},
	queryir.OpGreaterThan:        {">", ClassGreaterThan},
	queryir.OpGreaterThanOrEqual: {">=", ClassGreaterThanOrEqual},
	queryir.OpLike:               {"like", ClassLike},
	queryir.OpNotLike:            {"not like", ClassNotLike},
}

// booleanBitwise reports whether n is &, | or ^ applied to booleans.
func booleanBitwise(n *queryir.Binary) bool {
	switch n.Op {
	case queryir.OpAnd, queryir.OpOr, queryir.OpExclusiveOr:
		return n.Left.Type().IsBool() && n.Right.Type().IsBool()
	default:
		return false
	}
}

func (s *Session) binaryValue(n *queryir.Binary) (Expr, error) {
	if n.Op.YieldsBool() || booleanBitwise(n) {
		return s.predicateAsValue(n)
	}

	l, err := s.value(n.Left)
	if err != nil {
		return Expr{}, err
	}
	r, err := s.value(n.Right)
	if err != nil {
		return Expr{}, err
	}

	switch n.Op {
	case queryir.OpCoalesce:
		return Expr{SQL: "isnull(" + arg(l) + ", " + arg(r) + ")", Class: ClassCall}, nil
	case queryir.OpPower:
		return Expr{SQL: "power(" + arg(l) + ", " + arg(r) + ")", Class: ClassCall}, nil
	case queryir.OpLeftShift:
		return Expr{SQL: wrap(l, ClassMultiply, false) + " * power(2, " + arg(r) + ")", Class: ClassMultiply}, nil
	case queryir.OpRightShift:
		return Expr{SQL: wrap(l, ClassDivide, false) + " / power(2, " + arg(r) + ")", Class: ClassDivide}, nil
	}

	op, ok := arithmetic[n.Op]
	if !ok {
		return Expr{}, sqlerr.Unsupported(n.Op.String(), "no value form for binary operator")
	}
	return Expr{
		SQL:   wrap(l, op.class, false) + " " + op.symbol + " " + wrap(r, op.class, true),
		Class: op.class,
	}, nil
}

// binaryPredicate renders left <op> right as a search condition. It takes
// the operator separately so that negation can render a flipped comparison
// of the same operands.
func (s *Session) binaryPredicate(op queryir.BinaryOp, left, right queryir.Field) (Expr, error) {
	switch op {
	case queryir.OpAndAlso, queryir.OpAnd:
		return s.logical(left, right, "and", ClassAndAlso)
	case queryir.OpOrElse, queryir.OpOr:
		return s.logical(left, right, "or", ClassOrElse)
	case queryir.OpExclusiveOr:
		if !left.Type().IsBool() || !right.Type().IsBool() {
			break
		}
		return s.compare(left, right, comparison[queryir.OpNotEqual])
	case queryir.OpEqual, queryir.OpNotEqual:
		return s.equality(op, left, right)
	case queryir.OpIn, queryir.OpNotIn:
		return s.in(op == queryir.OpNotIn, left, right)
	}
	if cmp, ok := comparison[op]; ok {
		return s.compare(left, right, cmp)
	}
	return Expr{}, sqlerr.Unsupported(op.String(), "no predicate form for binary operator")
}

func (s *Session) logical(left, right queryir.Field, keyword string, class OperatorClass) (Expr, error) {
	l, err := s.predicate(left)
	if err != nil {
		return Expr{}, err
	}
	r, err := s.predicate(right)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: wrap(l, class, false) + " " + keyword + " " + wrap(r, class, true), Class: class}, nil
}

func (s *Session) compare(left, right queryir.Field, cmp infix) (Expr, error) {
	l, err := s.value(left)
	if err != nil {
		return Expr{}, err
	}
	r, err := s.value(right)
	if err != nil {
		return Expr{}, err
	}
	lt := s.collate(wrap(l, cmp.class, false), left, right)
	return Expr{SQL: lt + " " + cmp.symbol + " " + wrap(r, cmp.class, true), Class: cmp.class}, nil
}

// equality collapses comparisons against a null constant:
//
//	null = null  → 1 = 1      null != null → 1 = 0
//	x = null     → x is null  x != null    → x is not null
func (s *Session) equality(op queryir.BinaryOp, left, right queryir.Field) (Expr, error) {
	ln, rn := queryir.IsNullConstant(left), queryir.IsNullConstant(right)
	switch {
	case ln && rn:
		if op == queryir.OpEqual {
			return Expr{SQL: "1 = 1", Class: ClassEqual}, nil
		}
		return Expr{SQL: "1 = 0", Class: ClassEqual}, nil
	case ln:
		return s.isNull(right, op == queryir.OpEqual)
	case rn:
		return s.isNull(left, op == queryir.OpEqual)
	}
	return s.compare(left, right, comparison[op])
}

// isNull renders "x is null", or "x is not null" when positive is false.
func (s *Session) isNull(x queryir.Field, positive bool) (Expr, error) {
	v, err := s.value(x)
	if err != nil {
		return Expr{}, err
	}
	if positive {
		return Expr{SQL: wrap(v, ClassEqual, false) + " is null", Class: ClassEqual}, nil
	}
	return Expr{SQL: wrap(v, ClassEqual, false) + " is not null", Class: ClassEqual}, nil
}

// in renders set membership. A constant sequence is expanded into one
// parameter per distinct element; null elements become an explicit null
// test because "x in (null)" never matches.
func (s *Session) in(negated bool, left, right queryir.Field) (Expr, error) {
	if !left.Type().IsBasic() {
		return Expr{}, sqlerr.Model("In", "left operand must be a basic-typed value, got %s", left.Type())
	}
	keyword, class := "in", ClassIn
	if negated {
		keyword, class = "not in", ClassNotIn
	}
	l, err := s.value(left)
	if err != nil {
		return Expr{}, err
	}
	subject := wrap(l, class, false)

	switch r := right.(type) {
	case *queryir.Subquery:
		sql, err := s.querySQL(r.Query, false)
		if err != nil {
			return Expr{}, err
		}
		return Expr{SQL: s.collate(subject, left) + " " + keyword + " (" + sql + ")", Class: class}, nil
	case *queryir.Constant:
		seq, ok := r.Value.(ir.IRSequence)
		if !ok {
			break
		}
		elemType := left.Type()
		if r.DataType != nil && r.DataType.Kind == ir.KindSequence && r.DataType.Elem != nil {
			elemType = r.DataType.Elem
		}

		var items []string
		seen := make(map[string]bool)
		hasNull := false
		for _, elem := range seq {
			if ir.IsNull(elem) {
				hasNull = true
				continue
			}
			text, err := s.params.Add(elem, elemType)
			if err != nil {
				return Expr{}, err
			}
			if !seen[text] {
				seen[text] = true
				items = append(items, text)
			}
		}

		if len(items) == 0 {
			if hasNull {
				return s.isNull(left, !negated)
			}
			if negated {
				return Expr{SQL: "1 = 1", Class: ClassEqual}, nil
			}
			return Expr{SQL: "1 = 0", Class: ClassEqual}, nil
		}

		list := s.collate(subject, left) + " " + keyword + " (" + strings.Join(items, ", ") + ")"
		if !hasNull {
			return Expr{SQL: list, Class: class}, nil
		}
		nullTest, err := s.isNull(left, !negated)
		if err != nil {
			return Expr{}, err
		}
		if negated {
			return Expr{SQL: list + " and " + nullTest.SQL, Class: ClassAndAlso}, nil
		}
		return Expr{SQL: list + " or " + nullTest.SQL, Class: ClassOrElse}, nil
	}
	return Expr{}, sqlerr.Model("In", "right operand must be a subquery or a constant sequence, got %s", right.Kind())
}
