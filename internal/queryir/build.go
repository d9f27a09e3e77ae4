package queryir

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// Col creates a column reference to source.name.
func Col(source, name string, t *ir.Type) *Original {
	return &Original{DataType: t, Source: source, Name: name}
}

// Ref creates a reference to a column projected by the nested query aliased
// source.
func Ref(source, name string, t *ir.Type) *Quote {
	return &Quote{DataType: t, Source: source, Name: name}
}

// Const creates a constant of type t from a Go value.
func Const(t *ir.Type, v any) (*Constant, error) {
	val, err := ir.ValueOf(v)
	if err != nil {
		return nil, sqlerr.Model("Constant", "%v", err)
	}
	return &Constant{DataType: t, Value: val}, nil
}

// Lit creates a constant whose type is inferred from the Go value:
// string, bool, int (int32), int16, int64, uint8 (byte), float32 (single),
// float64 (double), decimal.Decimal, time.Time, time.Duration (timespan),
// uuid.UUID, or []any of one of those (sequence).
//
// Lit panics if the type cannot be inferred; use Const for values that are
// not known statically.
func Lit(v any) *Constant {
	t, ok := inferType(v)
	if !ok {
		panic(fmt.Sprintf("queryir: cannot infer constant type of %T", v))
	}
	c, err := Const(t, v)
	if err != nil {
		panic(err)
	}
	return c
}

// Null creates a typed null constant.
func Null(t *ir.Type) *Constant {
	return &Constant{DataType: t, Value: ir.IRNull{}}
}

// List creates a sequence constant of elem for In/NotIn.
func List(elem *ir.Type, values ...any) (*Constant, error) {
	return Const(ir.SequenceOf(elem), values)
}

func inferType(v any) (*ir.Type, bool) {
	switch val := v.(type) {
	case string:
		return ir.String, true
	case bool:
		return ir.Bool, true
	case int, int32:
		return ir.Int32, true
	case int16:
		return ir.Int16, true
	case int64:
		return ir.Int64, true
	case uint8:
		return ir.Byte, true
	case int8:
		return ir.SByte, true
	case float32:
		return ir.Single, true
	case float64:
		return ir.Double, true
	case decimal.Decimal:
		return ir.Decimal, true
	case time.Time:
		return ir.DateTime, true
	case time.Duration:
		return ir.TimeSpan, true
	case uuid.UUID:
		return ir.Guid, true
	case []any:
		if len(val) == 0 {
			return nil, false
		}
		for _, elem := range val {
			if elem == nil {
				continue
			}
			et, ok := inferType(elem)
			if !ok {
				return nil, false
			}
			return ir.SequenceOf(et), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// NewBinary creates a binary node and checks the operand shapes that can be
// checked locally: both operands present, and for In/NotIn a basic left
// operand with a Subquery or sequence Constant on the right.
func NewBinary(op BinaryOp, left, right Field) (*Binary, error) {
	if left == nil || right == nil {
		return nil, sqlerr.Model(op.String(), "binary operand is nil")
	}
	if op == OpIn || op == OpNotIn {
		if err := checkIn(op, left, right); err != nil {
			return nil, err
		}
	}
	return Bin(op, left, right), nil
}

// Bin creates a binary node without validation. The result type is inferred:
// boolean for comparisons and logical operators, the right operand's type for
// Coalesce, double for Power, string when Add touches a string, and the left
// operand's type otherwise.
func Bin(op BinaryOp, left, right Field) *Binary {
	return &Binary{Op: op, Left: left, Right: right, DataType: binaryType(op, left, right)}
}

func binaryType(op BinaryOp, left, right Field) *ir.Type {
	switch {
	case op.YieldsBool():
		return ir.Bool
	case op == OpCoalesce && right != nil:
		return right.Type()
	case op == OpPower:
		return ir.Double
	case left == nil:
		return nil
	case op == OpAdd && (left.Type().IsString() || (right != nil && right.Type().IsString())):
		return ir.String
	default:
		return left.Type()
	}
}

func checkIn(op BinaryOp, left, right Field) error {
	if !IsBasic(left) || !left.Type().IsBasic() {
		return sqlerr.Model(op.String(), "left operand must be a basic-typed value, got %s", left.Kind())
	}
	switch r := right.(type) {
	case *Subquery:
		if r.Query == nil {
			return sqlerr.Model(op.String(), "subquery has no query")
		}
		switch p := Projection(r.Query); {
		case p == nil:
			return sqlerr.Model(op.String(), "subquery must project exactly one column, got no field list")
		case !IsBasic(p):
			return sqlerr.Model(op.String(), "subquery must project exactly one column, got %s", p.Kind())
		}
		return nil
	case *Constant:
		seq, ok := r.Value.(ir.IRSequence)
		if !ok {
			return sqlerr.Model(op.String(), "right operand constant must be a sequence, got %T", r.Value)
		}
		if r.DataType == nil || r.DataType.Kind != ir.KindSequence || !r.DataType.Elem.IsBasic() {
			return sqlerr.Model(op.String(), "sequence must have a basic element type, got %s", r.DataType)
		}
		for i, v := range seq {
			if _, nested := v.(ir.IRSequence); nested {
				return sqlerr.Model(op.String(), "sequence element %d is itself a sequence", i)
			}
			if !ir.Fits(v, r.DataType.Elem) {
				return sqlerr.Model(op.String(), "sequence element %d (%v) is not a %s", i, ir.Native(v), r.DataType.Elem)
			}
		}
		return nil
	default:
		return sqlerr.Model(op.String(), "right operand must be a subquery or a constant sequence, got %s", right.Kind())
	}
}

func Eq(l, r Field) *Binary  { return Bin(OpEqual, l, r) }
func Ne(l, r Field) *Binary  { return Bin(OpNotEqual, l, r) }
func Lt(l, r Field) *Binary  { return Bin(OpLessThan, l, r) }
func Le(l, r Field) *Binary  { return Bin(OpLessThanOrEqual, l, r) }
func Gt(l, r Field) *Binary  { return Bin(OpGreaterThan, l, r) }
func Ge(l, r Field) *Binary  { return Bin(OpGreaterThanOrEqual, l, r) }
func And(l, r Field) *Binary { return Bin(OpAndAlso, l, r) }
func Or(l, r Field) *Binary  { return Bin(OpOrElse, l, r) }

// In creates left IN right.
func In(left, right Field) (*Binary, error) { return NewBinary(OpIn, left, right) }

// NotIn creates left NOT IN right.
func NotIn(left, right Field) (*Binary, error) { return NewBinary(OpNotIn, left, right) }

// Not negates x: logically for booleans, bitwise otherwise.
func Not(x Field) *Unary {
	return &Unary{Op: OpNot, Operand: x, DataType: x.Type()}
}

// Negate creates -x.
func Negate(x Field) *Unary {
	return &Unary{Op: OpNegate, Operand: x, DataType: x.Type()}
}

// Convert converts x to t.
func Convert(x Field, t *ir.Type) *Unary {
	return &Unary{Op: OpConvert, Operand: x, DataType: t}
}

// If creates test ? a : b.
func If(test, a, b Field) *Conditional {
	return &Conditional{Test: test, IfTrue: a, IfFalse: b, DataType: a.Type()}
}

// Call creates a method call, resolving its MethodID.
func Call(declaring, name string, t *ir.Type, receiver Field, args ...Field) *MethodCall {
	return &MethodCall{
		ID:        LookupMethod(declaring, name),
		Declaring: declaring,
		Name:      name,
		Receiver:  receiver,
		Args:      args,
		DataType:  t,
	}
}

// Access creates a property read, resolving its MemberID.
func Access(declaring, name string, t *ir.Type, receiver Field) *MemberAccess {
	return &MemberAccess{
		ID:        LookupMember(declaring, name),
		Declaring: declaring,
		Name:      name,
		Receiver:  receiver,
		DataType:  t,
	}
}

// Sub nests q as a field of type t.
func Sub(q Query, t *ir.Type) *Subquery {
	return &Subquery{Query: q, DataType: t}
}

// M is a shorthand for NamedField.
func M(name string, f Field) NamedField {
	return NamedField{Name: name, Field: f}
}

// Obj creates an Object shape from member initializers.
func Obj(shape string, members ...NamedField) *Object {
	return &Object{DataType: ir.ObjectOf(shape), Members: members}
}
