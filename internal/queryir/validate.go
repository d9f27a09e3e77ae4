package queryir

import (
	"errors"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// Validate checks a statement graph for structural violations:
//  1. Required operands and sources are present
//  2. In/NotIn have a basic left operand and a subquery or sequence right operand
//  3. Every join except a cross join has an ON predicate; cross joins have none
//  4. Limits have Start >= 0 and Count > 0
//  5. Insert lists one value per column; Update assigns at least one column
//  6. Every switch case has at least one test value
//
// All violations are reported, joined with errors.Join. Each is a
// *sqlerr.Error with CodeModel. Shared nodes are visited once.
//
// Validate is a pure function with no side effects.
func Validate(stmt Statement) error {
	v := &validator{seen: make(map[Field]bool)}
	v.validateStatement(stmt)
	return errors.Join(v.errs...)
}

// validator accumulates violations during traversal.
type validator struct {
	errs []error
	seen map[Field]bool
}

func (v *validator) addError(construct, format string, args ...any) {
	v.errs = append(v.errs, sqlerr.Model(construct, format, args...))
}

func (v *validator) validateStatement(stmt Statement) {
	switch s := stmt.(type) {
	case nil:
		v.addError("Statement", "nil statement")
	case *Select, *Compound:
		v.validateQuery(s.(Query))
	case *Insert:
		v.validateTable(s.Table)
		if len(s.Columns) == 0 {
			v.addError("Insert", "no columns")
		}
		if len(s.Columns) != len(s.Values) {
			v.addError("Insert", "%d columns but %d values", len(s.Columns), len(s.Values))
		}
		for _, c := range s.Columns {
			if c == nil {
				v.addError("Insert", "nil column")
			}
		}
		for _, val := range s.Values {
			v.requireField("Insert value", val)
		}
	case *InsertFrom:
		v.validateTable(s.Table)
		if s.Shape == nil {
			v.addError("InsertFrom", "target shape is nil")
		}
		v.validateQuery(s.Query)
	case *Update:
		if len(s.Set) == 0 {
			v.addError("Update", "no assignments")
		}
		for _, a := range s.Set {
			if a.Column == nil {
				v.addError("Update", "assignment target is nil")
			}
			v.requireField("Update value", a.Value)
		}
		v.validateSource(s.From)
		v.optionalField(s.Where)
	case *Delete:
		if len(s.Targets) == 0 {
			v.addError("Delete", "no target table")
		}
		for _, t := range s.Targets {
			v.validateTable(t)
		}
		v.validateSource(s.From)
		v.optionalField(s.Where)
	default:
		v.addError("Statement", "unknown statement type %T", stmt)
	}
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addError("Query", "nil query")
	case *Select:
		v.validateSource(query.From)
		v.optionalField(query.Fields)
		v.optionalField(query.Where)
		for _, g := range query.GroupBy {
			v.requireField("GroupBy", g)
		}
		for _, s := range query.OrderBy {
			v.requireField("OrderBy", s.Field)
		}
		if l := query.Limit; l != nil {
			if l.Start < 0 {
				v.addError("Limit", "negative start %d", l.Start)
			}
			if l.Count <= 0 {
				v.addError("Limit", "count must be positive, got %d", l.Count)
			}
		}
	case *Compound:
		v.validateQuery(query.Left)
		v.validateQuery(query.Right)
	}
}

func (v *validator) validateTable(t *Table) {
	if t == nil || t.Name == "" {
		v.addError("Table", "missing table name")
	}
}

func (v *validator) validateSource(s Source) {
	switch src := s.(type) {
	case nil:
		v.addError("Source", "nil source")
	case *Table:
		v.validateTable(src)
	case *View:
		if src.Name == "" {
			v.addError("View", "missing view name")
		}
	case *Derived:
		if src.Alias == "" {
			v.addError("Derived", "nested query needs an alias")
		}
		v.validateQuery(src.Query)
	case *Join:
		v.validateSource(src.Left)
		v.validateSource(src.Right)
		if src.Kind == CrossJoin {
			if src.On != nil {
				v.addError("Join", "cross join cannot have an ON predicate")
			}
		} else {
			v.requireField("Join "+src.Kind.String(), src.On)
		}
	}
}

func (v *validator) optionalField(f Field) {
	if f != nil {
		v.validateField(f)
	}
}

func (v *validator) requireField(construct string, f Field) {
	if f == nil {
		v.addError(construct, "missing operand")
		return
	}
	v.validateField(f)
}

func (v *validator) validateField(f Field) {
	if v.seen[f] {
		return
	}
	v.seen[f] = true

	switch n := f.(type) {
	case *Constant, *Original, *Quote:
	case *Unary:
		v.requireField(n.Op.String(), n.Operand)
	case *Binary:
		v.requireField(n.Op.String(), n.Left)
		v.requireField(n.Op.String(), n.Right)
		if (n.Op == OpIn || n.Op == OpNotIn) && n.Left != nil && n.Right != nil {
			if err := checkIn(n.Op, n.Left, n.Right); err != nil {
				v.errs = append(v.errs, err)
			}
		}
	case *Conditional:
		v.requireField("Conditional", n.Test)
		v.requireField("Conditional", n.IfTrue)
		v.requireField("Conditional", n.IfFalse)
	case *Switch:
		v.requireField("Switch", n.Value)
		for _, c := range n.Cases {
			if len(c.Tests) == 0 {
				v.addError("Switch", "case without test values")
			}
			for _, t := range c.Tests {
				v.requireField("Switch test", t)
			}
			v.requireField("Switch body", c.Body)
		}
		v.optionalField(n.Default)
	case *MemberAccess:
		v.optionalField(n.Receiver)
	case *MethodCall:
		v.optionalField(n.Receiver)
		for _, a := range n.Args {
			v.requireField(n.Declaring+"."+n.Name, a)
		}
	case *Subquery:
		if n.Query == nil {
			v.addError("Subquery", "nil query")
		} else {
			v.validateQuery(n.Query)
		}
	case *Object:
		for _, a := range n.Args {
			v.requireField("Object argument", a)
		}
		for _, m := range n.Members {
			v.requireField("Object member "+m.Name, m.Field)
		}
	case *Collection:
		for _, a := range n.Args {
			v.requireField("Collection argument", a)
		}
		for _, e := range n.Elements {
			v.requireField("Collection element", e)
		}
	}

	if IsBasic(f) && f.Type() == nil {
		v.addError(f.Kind().String(), "node has no runtime type")
	}
	if c, ok := f.(*Constant); ok {
		if _, isSeq := c.Value.(ir.IRSequence); isSeq && c.DataType != nil && c.DataType.Kind != ir.KindSequence {
			v.addError("Constant", "sequence value with non-sequence type %s", c.DataType)
		}
	}
}
