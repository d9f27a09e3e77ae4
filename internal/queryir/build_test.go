package queryir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

func TestLit_InfersType(t *testing.T) {
	tests := []struct {
		in   any
		want *ir.Type
	}{
		{"a", ir.String},
		{18, ir.Int32},
		{int64(1), ir.Int64},
		{true, ir.Bool},
		{2.5, ir.Double},
		{time.Time{}, ir.DateTime},
		{[]any{1, 2}, ir.SequenceOf(ir.Int32)},
		{[]any{nil, "x"}, ir.SequenceOf(ir.String)},
	}
	for _, tt := range tests {
		c := Lit(tt.in)
		assert.True(t, tt.want.Equal(c.DataType), "%v: got %s", tt.in, c.DataType)
	}
}

func TestLit_PanicsOnUnknownType(t *testing.T) {
	assert.Panics(t, func() { Lit(struct{}{}) })
	assert.Panics(t, func() { Lit([]any{}) })
}

func TestBin_InfersType(t *testing.T) {
	age := Col("T0", "Age", ir.Int32)
	name := Col("T0", "Name", ir.String)

	assert.Same(t, ir.Bool, Gt(age, Lit(1)).DataType)
	assert.Same(t, ir.Int32, Bin(OpSubtract, age, Lit(1)).DataType)
	assert.Same(t, ir.String, Bin(OpAdd, Lit(1), name).DataType)
	assert.Same(t, ir.Double, Bin(OpPower, age, Lit(2)).DataType)
	assert.Same(t, ir.String, Bin(OpCoalesce, Col("T0", "Nick", ir.NullableOf(ir.String)), name).DataType)
}

func TestIn_ConstructionChecks(t *testing.T) {
	age := Col("T0", "Age", ir.Int32)

	_, err := In(age, Lit([]any{1, 2}))
	require.NoError(t, err)

	_, err = In(age, Sub(&Select{From: &Table{Name: "User", Alias: "T1"}, Fields: Col("T1", "Age", ir.Int32)}, ir.Int32))
	require.NoError(t, err)

	_, err = In(age, Lit(3))
	assert.True(t, sqlerr.IsModelViolation(err))

	_, err = NotIn(Obj("User", M("Age", age)), Lit([]any{1}))
	assert.True(t, sqlerr.IsModelViolation(err))

	_, err = NewBinary(OpEqual, age, nil)
	assert.True(t, sqlerr.IsModelViolation(err))
}

func TestIn_SubqueryMustProjectOneColumn(t *testing.T) {
	id := Col("T0", "Id", ir.Int32)
	orders := &Table{Name: "Order", Alias: "T1"}
	userID := Col("T1", "UserId", ir.Int32)
	amount := Col("T1", "Amount", ir.Decimal)

	tests := []struct {
		name   string
		fields Field
		want   string
	}{
		{"no field list", nil, "no field list"},
		{"object", Obj("Row", M("UserId", userID), M("Amount", amount)), "got Object"},
		{"collection", &Collection{Elements: []Field{userID}, DataType: ir.SequenceOf(ir.Int32)}, "got Collection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Sub(&Select{From: orders, Fields: tt.fields}, ir.Int32)
			_, err := In(id, sub)
			require.Error(t, err)
			assert.True(t, sqlerr.IsModelViolation(err))
			assert.ErrorContains(t, err, tt.want)

			// Validate applies the same rule to nodes built without NewBinary.
			stmt := &Select{From: &Table{Name: "User", Alias: "T0"}, Where: Bin(OpNotIn, id, sub)}
			assert.True(t, sqlerr.IsModelViolation(Validate(stmt)))
		})
	}

	compound := &Compound{
		Op:    Union,
		Left:  &Select{From: orders, Fields: userID},
		Right: &Select{From: orders, Fields: userID},
	}
	_, err := In(id, Sub(compound, ir.Int32))
	assert.NoError(t, err)
}

func TestIn_ListElementsMatchElementType(t *testing.T) {
	id := Col("T0", "Id", ir.Int32)

	mixed, err := List(ir.Int32, 1, "a", 2.5)
	require.NoError(t, err)
	_, err = In(id, mixed)
	require.Error(t, err)
	assert.True(t, sqlerr.IsModelViolation(err))
	assert.ErrorContains(t, err, "element 1")

	nested := &Constant{DataType: ir.SequenceOf(ir.Int32), Value: ir.IRSequence{ir.IRInt(1), ir.IRSequence{ir.IRInt(2)}}}
	_, err = NotIn(id, nested)
	assert.ErrorContains(t, err, "itself a sequence")

	composite := &Constant{DataType: ir.SequenceOf(ir.ObjectOf("Row")), Value: ir.IRSequence{}}
	_, err = In(id, composite)
	assert.ErrorContains(t, err, "basic element type")

	withNull, err := List(ir.Int32, 1, nil, int64(3))
	require.NoError(t, err)
	_, err = In(id, withNull)
	assert.NoError(t, err)

	stmt := &Select{From: &Table{Name: "User", Alias: "T0"}, Where: Bin(OpIn, id, mixed)}
	assert.True(t, sqlerr.IsModelViolation(Validate(stmt)))
}

func TestLookup(t *testing.T) {
	assert.Equal(t, StringStartsWith, LookupMethod("String", "StartsWith"))
	assert.Equal(t, StringStartsWith, LookupMethod("string", "startswith"))
	assert.Equal(t, MethodToString, LookupMethod("DateTime", "ToString"))
	assert.Equal(t, MethodConvert, LookupMethod("Convert", "ToInt64"))
	assert.Equal(t, MethodParse, LookupMethod("Guid", "Parse"))
	assert.Equal(t, DBDiffDay, LookupMethod("DBFun", "DiffDay"))
	assert.Equal(t, MethodUnknown, LookupMethod("String", "PadLeft"))

	assert.Equal(t, StringLength, LookupMember("String", "Length"))
	assert.Equal(t, DateTimeYear, LookupMember("datetime", "YEAR"))
	assert.Equal(t, MemberUnknown, LookupMember("DateTime", "Ticks"))
}

func TestCall_ResolvesID(t *testing.T) {
	c := Call("String", "Contains", ir.Bool, Col("T0", "Name", ir.String), Lit("a"))
	assert.Equal(t, StringContains, c.ID)
	assert.Equal(t, KindMethod, c.Kind())

	m := Access("String", "Length", ir.Int32, Col("T0", "Name", ir.String))
	assert.Equal(t, StringLength, m.ID)
}

func TestAliasAndIntrinsicName(t *testing.T) {
	col := Col("T0", "Name", ir.String)
	assert.Equal(t, "Name", IntrinsicName(col))
	col.Alias = "F0"
	assert.Equal(t, "F0", AliasOf(col))

	sum := Bin(OpAdd, Lit(1), Lit(2))
	assert.Equal(t, "", IntrinsicName(sum))
	assert.True(t, IsBasic(sum))
	assert.False(t, IsBasic(Obj("X")))
	assert.True(t, IsNullConstant(Null(ir.String)))

	assert.True(t, SetAlias(sum, "Total"))
	assert.Equal(t, "Total", AliasOf(sum))
	assert.False(t, SetAlias(Obj("X"), "Y"))
}

func TestOpNames(t *testing.T) {
	op, ok := ParseBinaryOp("GreaterThanOrEqual")
	require.True(t, ok)
	assert.Equal(t, OpGreaterThanOrEqual, op)

	_, ok = ParseBinaryOp("Spaceship")
	assert.False(t, ok)

	u, ok := ParseUnaryOp("Convert")
	require.True(t, ok)
	assert.Equal(t, OpConvert, u)
	assert.Equal(t, "Switch", KindSwitch.String())
}
