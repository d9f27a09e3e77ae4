package querysql

import (
	"fmt"
	"strings"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// value renders f as a scalar expression.
func (s *Session) value(f queryir.Field) (Expr, error) {
	if f == nil {
		return Expr{}, sqlerr.Model("Field", "nil operand")
	}
	if e, ok := s.values[f]; ok {
		return e, nil
	}

	var e Expr
	var err error
	switch n := f.(type) {
	case *queryir.Constant:
		e, err = s.constantValue(n)
	case *queryir.Original:
		e = Expr{SQL: columnRef(n.Source, n.Name), Class: ClassDefault}
	case *queryir.Quote:
		e = Expr{SQL: columnRef(n.Source, n.Name), Class: ClassDefault}
	case *queryir.Unary:
		e, err = s.unaryValue(n)
	case *queryir.Binary:
		e, err = s.binaryValue(n)
	case *queryir.Conditional:
		e, err = s.conditionalValue(n)
	case *queryir.Switch:
		e, err = s.switchValue(n)
	case *queryir.MemberAccess:
		e, err = s.memberValue(n)
	case *queryir.MethodCall:
		e, err = s.methodValue(n)
	case *queryir.Subquery:
		e, err = s.subqueryValue(n)
	case *queryir.Object, *queryir.Collection:
		err = sqlerr.Unsupported(f.Kind().String(), "a composite shape has no scalar form")
	default:
		err = sqlerr.Unsupported(fmt.Sprintf("%T", f), "unknown node type")
	}
	if err != nil {
		return Expr{}, err
	}
	s.values[f] = e
	return e, nil
}

// predicate renders f as a search condition. Only boolean nodes have one.
func (s *Session) predicate(f queryir.Field) (Expr, error) {
	if f == nil {
		return Expr{}, sqlerr.Model("Field", "nil operand")
	}
	if e, ok := s.predicates[f]; ok {
		return e, nil
	}
	if !queryir.IsBasic(f) || !f.Type().IsBool() {
		return Expr{}, sqlerr.Unsupported(f.Kind().String(), "no predicate form for type %s", f.Type())
	}

	var e Expr
	var err error
	switch n := f.(type) {
	case *queryir.Unary:
		e, err = s.unaryPredicate(n)
	case *queryir.Binary:
		e, err = s.binaryPredicate(n.Op, n.Left, n.Right)
	case *queryir.Conditional:
		e, err = s.conditionalPredicate(n)
	case *queryir.MemberAccess:
		e, err = s.memberPredicate(n)
	case *queryir.MethodCall:
		e, err = s.methodPredicate(n, false)
	default:
		e, err = s.bitIs(f, "1")
	}
	if err != nil {
		return Expr{}, err
	}
	s.predicates[f] = e
	return e, nil
}

// bitIs renders "<value> = bit" for a bit-valued node.
func (s *Session) bitIs(f queryir.Field, bit string) (Expr, error) {
	v, err := s.value(f)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: wrap(v, ClassEqual, false) + " = " + bit, Class: ClassEqual}, nil
}

// boolToValue turns a search condition into a bit expression.
func (s *Session) boolToValue(p Expr) Expr {
	return s.ternary(p, "convert(bit, 1)", "convert(bit, 0)")
}

// ternary picks between two value texts on a predicate: iif from build 684
// on, case when before it.
func (s *Session) ternary(test Expr, a, b string) Expr {
	if s.dialect.SupportsIIF() {
		return Expr{SQL: "iif(" + test.SQL + ", " + a + ", " + b + ")", Class: ClassCall}
	}
	return Expr{SQL: "case when " + test.SQL + " then " + a + " else " + b + " end", Class: ClassCall}
}

// predicateAsValue renders f's predicate form and materializes it as a bit.
func (s *Session) predicateAsValue(f queryir.Field) (Expr, error) {
	p, err := s.predicate(f)
	if err != nil {
		return Expr{}, err
	}
	return s.boolToValue(p), nil
}

func columnRef(source, name string) string {
	if source == "" {
		return dialect.QuoteName(name)
	}
	return source + "." + dialect.QuoteName(name)
}

func (s *Session) constantValue(n *queryir.Constant) (Expr, error) {
	if !n.DataType.IsBasic() {
		return Expr{}, sqlerr.Unsupported("Constant", "only basic-typed constants can be parameters, got %s", n.DataType)
	}
	text, err := s.params.Add(n.Value, n.DataType)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: text, Class: ClassDefault}, nil
}

// collate returns text followed by the collation marker when the comparison
// is between strings and the dialect is case sensitive.
func (s *Session) collate(text string, operands ...queryir.Field) string {
	marker := s.dialect.CollationMarker()
	if marker == "" {
		return text
	}
	for _, o := range operands {
		if !o.Type().IsString() {
			return text
		}
	}
	return text + " " + marker
}

func (s *Session) conditionalValue(n *queryir.Conditional) (Expr, error) {
	test, err := s.predicate(n.Test)
	if err != nil {
		return Expr{}, err
	}
	a, err := s.value(n.IfTrue)
	if err != nil {
		return Expr{}, err
	}
	b, err := s.value(n.IfFalse)
	if err != nil {
		return Expr{}, err
	}
	return s.ternary(test, arg(a), arg(b)), nil
}

func constantBool(f queryir.Field) (value, ok bool) {
	c, isConst := f.(*queryir.Constant)
	if !isConst {
		return false, false
	}
	b, isBool := c.Value.(ir.IRBool)
	return bool(b), isBool
}

// conditionalPredicate folds branches that are both boolean constants:
//
//	test ? true : true   → 1 = 1
//	test ? true : false  → test
//	test ? false : true  → not test
//	test ? false : false → 1 = 0
func (s *Session) conditionalPredicate(n *queryir.Conditional) (Expr, error) {
	a, aok := constantBool(n.IfTrue)
	b, bok := constantBool(n.IfFalse)
	if aok && bok {
		switch {
		case a && b:
			return Expr{SQL: "1 = 1", Class: ClassEqual}, nil
		case a:
			return s.predicate(n.Test)
		case b:
			return s.negate(n.Test)
		default:
			return Expr{SQL: "1 = 0", Class: ClassEqual}, nil
		}
	}
	return s.bitIs(n, "1")
}

// switchValue renders
//
//	case when v = t1 or v = t2 then body1 ... else default end
//
// A switch without cases is its default body.
func (s *Session) switchValue(n *queryir.Switch) (Expr, error) {
	if len(n.Cases) == 0 {
		if n.Default == nil {
			return Expr{SQL: "null", Class: ClassDefault}, nil
		}
		return s.value(n.Default)
	}

	sv, err := s.value(n.Value)
	if err != nil {
		return Expr{}, err
	}
	subject := wrap(sv, ClassEqual, false)

	var b strings.Builder
	b.WriteString("case")
	for _, c := range n.Cases {
		tests := make([]string, 0, len(c.Tests))
		for _, t := range c.Tests {
			if queryir.IsNullConstant(t) {
				tests = append(tests, subject+" is null")
				continue
			}
			tv, err := s.value(t)
			if err != nil {
				return Expr{}, err
			}
			tests = append(tests, s.collate(subject, n.Value, t)+" = "+wrap(tv, ClassEqual, true))
		}
		body, err := s.value(c.Body)
		if err != nil {
			return Expr{}, err
		}
		b.WriteString(" when ")
		b.WriteString(strings.Join(tests, " or "))
		b.WriteString(" then ")
		b.WriteString(arg(body))
	}
	if n.Default != nil {
		def, err := s.value(n.Default)
		if err != nil {
			return Expr{}, err
		}
		b.WriteString(" else ")
		b.WriteString(arg(def))
	}
	b.WriteString(" end")
	return Expr{SQL: b.String(), Class: ClassCall}, nil
}

// subqueryValue renders a scalar subquery. The nested query must yield at
// most one row: it is limited to one row, or it projects a single aggregate
// without grouping.
func (s *Session) subqueryValue(n *queryir.Subquery) (Expr, error) {
	sel, ok := n.Query.(*queryir.Select)
	if !ok || !singleRow(sel) {
		return Expr{}, sqlerr.Capability("Subquery", "a subquery used as a value must return exactly one row")
	}
	if !queryir.IsBasic(sel.Fields) {
		return Expr{}, sqlerr.Capability("Subquery", "a subquery used as a value must return exactly one column")
	}
	sql, err := s.selectSQL(sel, false)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: sql, Class: ClassSubquery}, nil
}

func singleRow(sel *queryir.Select) bool {
	if sel.Limit != nil && sel.Limit.Count == 1 {
		return true
	}
	return len(sel.GroupBy) == 0 && isAggregate(sel.Fields)
}

func isAggregate(f queryir.Field) bool {
	switch n := f.(type) {
	case *queryir.MethodCall:
		switch n.ID {
		case queryir.DBCount, queryir.DBMax, queryir.DBMin, queryir.DBSum, queryir.DBAvg,
			queryir.DBStDev, queryir.DBStDevP, queryir.DBVar, queryir.DBVarP:
			return true
		}
	case *queryir.Unary:
		return n.Op == queryir.OpConvert && isAggregate(n.Operand)
	}
	return false
}
