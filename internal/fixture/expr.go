package fixture

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
)

// binaryOps maps the short operator keys. The full operator names
// (Equal, AndAlso, ...) are accepted as well.
var binaryOps = map[string]queryir.BinaryOp{
	"add":      queryir.OpAdd,
	"sub":      queryir.OpSubtract,
	"mul":      queryir.OpMultiply,
	"div":      queryir.OpDivide,
	"mod":      queryir.OpModulo,
	"pow":      queryir.OpPower,
	"shl":      queryir.OpLeftShift,
	"shr":      queryir.OpRightShift,
	"band":     queryir.OpAnd,
	"bor":      queryir.OpOr,
	"xor":      queryir.OpExclusiveOr,
	"coalesce": queryir.OpCoalesce,
	"eq":       queryir.OpEqual,
	"ne":       queryir.OpNotEqual,
	"lt":       queryir.OpLessThan,
	"le":       queryir.OpLessThanOrEqual,
	"gt":       queryir.OpGreaterThan,
	"ge":       queryir.OpGreaterThanOrEqual,
	"and":      queryir.OpAndAlso,
	"or":       queryir.OpOrElse,
	"like":     queryir.OpLike,
	"notLike":  queryir.OpNotLike,
	"in":       queryir.OpIn,
	"notIn":    queryir.OpNotIn,
}

// expr builds a field.
//
// Scalars are constants, except strings of the form Alias.Column naming a
// declared table or nested query, which are column references. Mappings
// carry one operator key:
//
//	eq: [a, b]                  binary operators fold left over 2+ operands
//	in: [a, [1, 2]]             constant list, or in: [a, {query: ...}]
//	not: a | neg: a
//	convert: {to: int64, value: a}
//	if: [test, a, b]
//	switch: {value: a, cases: [{when: [1, 2], then: b}], else: c}
//	call: {method: String.Contains, receiver: a, args: [b], type: bool}
//	member: {name: String.Length, receiver: a}
//	lit: {type: datetime, value: "2024-01-02"} | lit: "T0.Name"
//	null: nullable(string)
//	ref: {source: D0, name: Total, type: decimal}
//	query: {select: ...}
//
// A mapping with keys as and value aliases the field.
func (b *builder) expr(n *yaml.Node) (queryir.Field, error) {
	n = deref(n)
	if n == nil {
		return nil, errorAt(n, "missing expression")
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return b.scalar(n)
	case yaml.MappingNode:
	default:
		return nil, errorAt(n, "expected a scalar or an operator mapping")
	}

	if hasKey(n, "as") {
		m, err := fields(n, "as", "value")
		if err != nil {
			return nil, err
		}
		if m["value"] == nil {
			return nil, errorAt(n, "aliased field needs a value")
		}
		f, err := b.expr(m["value"])
		if err != nil {
			return nil, err
		}
		if !queryir.SetAlias(f, m["as"].Value) {
			return nil, errorAt(m["as"], "%s cannot carry an alias", f.Kind())
		}
		return f, nil
	}

	op, arg, err := single(n)
	if err != nil {
		return nil, err
	}
	switch op {
	case "not", "neg":
		x, err := b.expr(arg)
		if err != nil {
			return nil, err
		}
		if op == "not" {
			return queryir.Not(x), nil
		}
		return queryir.Negate(x), nil
	case "convert":
		m, err := fields(arg, "to", "value")
		if err != nil {
			return nil, err
		}
		t, err := parseType(m["to"])
		if err != nil {
			return nil, err
		}
		x, err := b.expr(m["value"])
		if err != nil {
			return nil, err
		}
		return queryir.Convert(x, t), nil
	case "if":
		items, err := sequence(arg, 3)
		if err != nil {
			return nil, err
		}
		if len(items) != 3 {
			return nil, errorAt(arg, "if takes [test, then, else]")
		}
		parts, err := b.exprs(items)
		if err != nil {
			return nil, err
		}
		return queryir.If(parts[0], parts[1], parts[2]), nil
	case "switch":
		return b.switchExpr(arg)
	case "call":
		return b.call(arg)
	case "member":
		return b.member(arg)
	case "lit":
		return b.literal(arg)
	case "null":
		t, err := parseType(arg)
		if err != nil {
			return nil, err
		}
		return queryir.Null(t), nil
	case "ref":
		m, err := fields(arg, "source", "name", "type")
		if err != nil {
			return nil, err
		}
		if m["source"] == nil || m["name"] == nil {
			return nil, errorAt(arg, "ref needs source and name")
		}
		t, err := parseType(m["type"])
		if err != nil {
			return nil, err
		}
		return queryir.Ref(m["source"].Value, m["name"].Value, t), nil
	case "query":
		q, err := b.query(arg)
		if err != nil {
			return nil, err
		}
		t := ir.ObjectOf("Row")
		if p := queryir.Projection(q); p != nil {
			t = p.Type()
		}
		return queryir.Sub(q, t), nil
	}

	bop, ok := binaryOps[op]
	if !ok {
		if bop, ok = queryir.ParseBinaryOp(op); !ok {
			return nil, errorAt(n, "unknown operator %q", op)
		}
	}
	if bop == queryir.OpIn || bop == queryir.OpNotIn {
		return b.in(bop, arg)
	}
	items, err := sequence(arg, 2)
	if err != nil {
		return nil, err
	}
	operands, err := b.exprs(items)
	if err != nil {
		return nil, err
	}
	f := operands[0]
	for _, right := range operands[1:] {
		f = queryir.Bin(bop, f, right)
	}
	return f, nil
}

func (b *builder) exprs(items []*yaml.Node) ([]queryir.Field, error) {
	out := make([]queryir.Field, len(items))
	for i, item := range items {
		f, err := b.expr(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// scalar builds a constant or a column reference from a plain scalar.
func (b *builder) scalar(n *yaml.Node) (queryir.Field, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, errorAt(n, "untyped null; write {null: <type>}")
	case "!!bool":
		return typedConst(n, ir.Bool)
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return nil, errorAt(n, "%v", err)
		}
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return typedConst(n, ir.Int32)
		}
		return typedConst(n, ir.Int64)
	case "!!float":
		return typedConst(n, ir.Double)
	case "!!timestamp":
		return typedConst(n, ir.DateTime)
	}

	if alias, name, ok := strings.Cut(n.Value, "."); ok {
		if t, bound := b.tables[alias]; bound {
			typ, known := t.columns[name]
			if !known {
				return nil, errorAt(n, "unknown column %s.%s", alias, name)
			}
			return queryir.Col(alias, name, typ), nil
		}
		if cols, bound := b.derived[alias]; bound {
			typ, known := cols[name]
			if !known {
				return nil, errorAt(n, "nested query %s projects no column %s", alias, name)
			}
			return queryir.Ref(alias, name, typ), nil
		}
	}
	return typedConst(n, ir.String)
}

// literal builds a constant without column lookup: lit: "T0.Name" is the
// string, and lit: {type, value} is a typed constant.
func (b *builder) literal(n *yaml.Node) (queryir.Field, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!str" {
			return typedConst(n, ir.String)
		}
		return b.scalar(n)
	}
	m, err := fields(n, "type", "value")
	if err != nil {
		return nil, err
	}
	t, err := parseType(m["type"])
	if err != nil {
		return nil, err
	}
	if m["value"] == nil {
		return nil, errorAt(n, "lit needs a value")
	}
	return typedConst(m["value"], t)
}

func (b *builder) in(op queryir.BinaryOp, arg *yaml.Node) (queryir.Field, error) {
	items, err := sequence(arg, 2)
	if err != nil {
		return nil, err
	}
	if len(items) != 2 {
		return nil, errorAt(arg, "%s takes [value, list or query]", op)
	}
	left, err := b.expr(items[0])
	if err != nil {
		return nil, err
	}

	var right queryir.Field
	if items[1].Kind == yaml.SequenceNode {
		elem := left.Type().Underlying()
		values := make([]any, len(items[1].Content))
		for i, item := range items[1].Content {
			if values[i], err = goValue(deref(item), elem); err != nil {
				return nil, err
			}
		}
		if right, err = queryir.List(elem, values...); err != nil {
			return nil, errorAt(items[1], "%v", err)
		}
	} else if right, err = b.expr(items[1]); err != nil {
		return nil, err
	}

	f, err := queryir.NewBinary(op, left, right)
	if err != nil {
		return nil, errorAt(arg, "%v", err)
	}
	return f, nil
}

func (b *builder) switchExpr(n *yaml.Node) (queryir.Field, error) {
	m, err := fields(n, "value", "cases", "else")
	if err != nil {
		return nil, err
	}
	if m["value"] == nil || m["cases"] == nil {
		return nil, errorAt(n, "switch needs value and cases")
	}
	sw := &queryir.Switch{}
	if sw.Value, err = b.expr(m["value"]); err != nil {
		return nil, err
	}
	cases, err := sequence(m["cases"], 1)
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		cm, err := fields(c, "when", "then")
		if err != nil {
			return nil, err
		}
		if cm["when"] == nil || cm["then"] == nil {
			return nil, errorAt(c, "case needs when and then")
		}
		when := []*yaml.Node{cm["when"]}
		if cm["when"].Kind == yaml.SequenceNode {
			if when, err = sequence(cm["when"], 1); err != nil {
				return nil, err
			}
		}
		var arm queryir.Case
		if arm.Tests, err = b.exprs(when); err != nil {
			return nil, err
		}
		if arm.Body, err = b.expr(cm["then"]); err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, arm)
	}
	if e := m["else"]; e != nil {
		if sw.Default, err = b.expr(e); err != nil {
			return nil, err
		}
	}
	sw.DataType = sw.Cases[0].Body.Type()
	return sw, nil
}

func (b *builder) call(n *yaml.Node) (queryir.Field, error) {
	m, err := fields(n, "method", "receiver", "args", "type")
	if err != nil {
		return nil, err
	}
	if m["method"] == nil {
		return nil, errorAt(n, "call needs a method")
	}
	declaring, name, err := qualified(m["method"])
	if err != nil {
		return nil, err
	}
	var receiver queryir.Field
	if r := m["receiver"]; r != nil {
		if receiver, err = b.expr(r); err != nil {
			return nil, err
		}
	}
	var args []queryir.Field
	if a := m["args"]; a != nil {
		items, err := sequence(a, 0)
		if err != nil {
			return nil, err
		}
		if args, err = b.exprs(items); err != nil {
			return nil, err
		}
	}

	id := queryir.LookupMethod(declaring, name)
	t := callType(id, receiver, args)
	if tn := m["type"]; tn != nil {
		if t, err = parseType(tn); err != nil {
			return nil, err
		}
	}
	if t == nil {
		return nil, errorAt(n, "cannot infer the type of %s.%s; add type", declaring, name)
	}
	return queryir.Call(declaring, name, t, receiver, args...), nil
}

func (b *builder) member(n *yaml.Node) (queryir.Field, error) {
	m, err := fields(n, "name", "receiver", "type")
	if err != nil {
		return nil, err
	}
	if m["name"] == nil {
		return nil, errorAt(n, "member needs a name")
	}
	declaring, name, err := qualified(m["name"])
	if err != nil {
		return nil, err
	}
	var receiver queryir.Field
	if r := m["receiver"]; r != nil {
		if receiver, err = b.expr(r); err != nil {
			return nil, err
		}
	}

	t := memberType(queryir.LookupMember(declaring, name), receiver)
	if tn := m["type"]; tn != nil {
		if t, err = parseType(tn); err != nil {
			return nil, err
		}
	}
	if t == nil {
		return nil, errorAt(n, "cannot infer the type of %s.%s; add type", declaring, name)
	}
	return queryir.Access(declaring, name, t, receiver), nil
}

func qualified(n *yaml.Node) (string, string, error) {
	i := strings.LastIndexByte(n.Value, '.')
	if i <= 0 || i == len(n.Value)-1 {
		return "", "", errorAt(n, "expected Type.Name, got %q", n.Value)
	}
	return n.Value[:i], n.Value[i+1:], nil
}

// callType infers a method's result type when the fixture leaves it out.
func callType(id queryir.MethodID, receiver queryir.Field, args []queryir.Field) *ir.Type {
	switch id {
	case queryir.StringStartsWith, queryir.StringEndsWith, queryir.StringContains,
		queryir.StringIsNullOrEmpty, queryir.StringIsNullOrWhiteSpace:
		return ir.Bool
	case queryir.StringIndexOf, queryir.DBCount, queryir.DBNewInt,
		queryir.DBDiffYear, queryir.DBDiffMonth, queryir.DBDiffDay, queryir.DBDiffHour,
		queryir.DBDiffMinute, queryir.DBDiffSecond, queryir.DBDiffMillisecond:
		return ir.Int32
	case queryir.DBNewLong:
		return ir.Int64
	case queryir.MethodToString, queryir.StringSubstring, queryir.StringTrim,
		queryir.StringTrimStart, queryir.StringTrimEnd, queryir.StringToUpper,
		queryir.StringToLower, queryir.StringReplace, queryir.StringInsert:
		return ir.String
	case queryir.DBNowTime:
		return ir.DateTime
	case queryir.DBNewGuid:
		return ir.Guid
	case queryir.MathPow, queryir.DBAvg, queryir.DBStDev, queryir.DBStDevP, queryir.DBVar, queryir.DBVarP:
		return ir.Double
	case queryir.MethodConvert, queryir.MethodParse, queryir.MethodUnknown:
		return nil
	}
	if receiver != nil {
		return receiver.Type()
	}
	if len(args) > 0 {
		return args[0].Type()
	}
	return nil
}

func memberType(id queryir.MemberID, receiver queryir.Field) *ir.Type {
	switch id {
	case queryir.StringLength, queryir.DateTimeYear, queryir.DateTimeMonth, queryir.DateTimeDay,
		queryir.DateTimeHour, queryir.DateTimeMinute, queryir.DateTimeSecond,
		queryir.DateTimeMillisecond, queryir.DateTimeDayOfYear:
		return ir.Int32
	case queryir.DateTimeDate, queryir.DateTimeNow, queryir.DateTimeUtcNow, queryir.DateTimeToday:
		return ir.DateTime
	case queryir.DateTimeTimeOfDay:
		return ir.TimeSpan
	case queryir.NullableHasValue:
		return ir.Bool
	case queryir.NullableValue:
		if receiver != nil {
			return receiver.Type().Underlying()
		}
	}
	return nil
}

func parseType(n *yaml.Node) (*ir.Type, error) {
	if n == nil || n.Kind != yaml.ScalarNode {
		return nil, errorAt(n, "expected a type name")
	}
	t, err := ir.ParseType(n.Value)
	if err != nil {
		return nil, errorAt(n, "%v", err)
	}
	return t, nil
}

func typedConst(n *yaml.Node, t *ir.Type) (queryir.Field, error) {
	v, err := goValue(n, t)
	if err != nil {
		return nil, err
	}
	c, err := queryir.Const(t, v)
	if err != nil {
		return nil, errorAt(n, "%v", err)
	}
	return c, nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02"}

// goValue decodes scalar n as a Go value of type t. A null scalar decodes
// to nil for any type.
func goValue(n *yaml.Node, t *ir.Type) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errorAt(n, "expected a %s value", t)
	}
	if n.ShortTag() == "!!null" {
		return nil, nil
	}
	var (
		v   any
		err error
	)
	switch t.Underlying().Kind {
	case ir.KindBool:
		var b bool
		err = n.Decode(&b)
		v = b
	case ir.KindByte, ir.KindSByte, ir.KindInt16, ir.KindUInt16, ir.KindInt32,
		ir.KindUInt32, ir.KindInt64, ir.KindUInt64, ir.KindEnum:
		var i int64
		err = n.Decode(&i)
		v = i
	case ir.KindSingle, ir.KindDouble:
		var f float64
		err = n.Decode(&f)
		v = f
	case ir.KindDecimal:
		v, err = decimal.NewFromString(n.Value)
	case ir.KindString:
		v = n.Value
	case ir.KindDateTime, ir.KindDateTimeOffset:
		v, err = parseTime(n.Value)
	case ir.KindTimeSpan:
		v, err = time.ParseDuration(n.Value)
	case ir.KindGuid:
		v, err = uuid.Parse(n.Value)
	default:
		return nil, errorAt(n, "%s has no constant form", t)
	}
	if err != nil {
		return nil, errorAt(n, "invalid %s value %q: %v", t, n.Value, err)
	}
	return v, nil
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var at time.Time
		if at, err = time.Parse(layout, s); err == nil {
			return at, nil
		}
	}
	return time.Time{}, err
}
