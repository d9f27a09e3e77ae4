package querysql

import (
	"fmt"
	"slices"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// methodRule translates one recognized method.
type methodRule struct {
	// arity lists the accepted argument counts.
	arity []int
	// receiver is true for instance methods.
	receiver bool
	// on, when set, is the type the receiver must have.
	on *param
	// params types the arguments by position. Arguments past its end are
	// not checked.
	params []param
	// value renders the scalar form. Nil for methods that are natively
	// predicates; their value form is the materialized predicate.
	value func(s *Session, n *queryir.MethodCall) (Expr, error)
	// predicate renders a native search condition, negated on request.
	predicate func(s *Session, n *queryir.MethodCall, negated bool) (Expr, error)
}

// param is a type family an argument or receiver must belong to.
type param struct {
	name string
	ok   func(t *ir.Type) bool
}

var (
	text    = &param{"string", (*ir.Type).IsString}
	integer = &param{"integer", (*ir.Type).IsInteger}
)

func params(ps ...*param) []param {
	out := make([]param, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}

var methodRules map[queryir.MethodID]methodRule

func init() {
	methodRules = map[queryir.MethodID]methodRule{
		queryir.StringIndexOf:            {arity: []int{1, 2}, receiver: true, on: text, params: params(text, integer), value: indexOf},
		queryir.StringSubstring:          {arity: []int{1, 2}, receiver: true, on: text, params: params(integer, integer), value: substring},
		queryir.StringTrim:               {arity: []int{0}, receiver: true, on: text, value: trimFunc},
		queryir.StringTrimStart:          {arity: []int{0}, receiver: true, on: text, value: receiverCall("ltrim")},
		queryir.StringTrimEnd:            {arity: []int{0}, receiver: true, on: text, value: receiverCall("rtrim")},
		queryir.StringToUpper:            {arity: []int{0}, receiver: true, on: text, value: receiverCall("upper")},
		queryir.StringToLower:            {arity: []int{0}, receiver: true, on: text, value: receiverCall("lower")},
		queryir.StringReplace:            {arity: []int{2}, receiver: true, on: text, params: params(text, text), value: receiverCall("replace")},
		queryir.StringInsert:             {arity: []int{2}, receiver: true, on: text, params: params(integer, text), value: insert},
		queryir.StringStartsWith:         {arity: []int{1}, receiver: true, on: text, params: params(text), predicate: startsWith},
		queryir.StringEndsWith:           {arity: []int{1}, receiver: true, on: text, params: params(text), predicate: endsWith},
		queryir.StringContains:           {arity: []int{1}, receiver: true, on: text, params: params(text), predicate: contains},
		queryir.StringIsNullOrEmpty:      {arity: []int{1}, params: params(text), predicate: isNullOrEmpty},
		queryir.StringIsNullOrWhiteSpace: {arity: []int{1}, params: params(text), predicate: isNullOrWhiteSpace},
		queryir.MethodToString:           {arity: []int{0, 1}, receiver: true, value: toString},

		queryir.MathRound:   {arity: []int{1, 2}, value: round},
		queryir.MathFloor:   {arity: []int{1}, value: argsCall("floor")},
		queryir.MathCeiling: {arity: []int{1}, value: argsCall("ceiling")},
		queryir.MathAbs:     {arity: []int{1}, value: argsCall("abs")},
		queryir.MathPow:     {arity: []int{2}, value: argsCall("power")},

		queryir.DBCount:  {arity: []int{0, 1}, value: count},
		queryir.DBMax:    {arity: []int{1}, value: argsCall("max")},
		queryir.DBMin:    {arity: []int{1}, value: argsCall("min")},
		queryir.DBSum:    {arity: []int{1}, value: argsCall("sum")},
		queryir.DBAvg:    {arity: []int{1}, value: argsCall("avg")},
		queryir.DBStDev:  {arity: []int{1}, value: argsCall("stdev")},
		queryir.DBStDevP: {arity: []int{1}, value: argsCall("stdevp")},
		queryir.DBVar:    {arity: []int{1}, value: argsCall("var")},
		queryir.DBVarP:   {arity: []int{1}, value: argsCall("varp")},

		queryir.DBNowTime: {arity: []int{0}, value: fixed("getdate()")},
		queryir.DBNewGuid: {arity: []int{0}, value: fixed("newid()")},
		queryir.DBNewInt:  {arity: []int{0, 2}, value: newInt},
		queryir.DBNewLong: {arity: []int{0}, value: fixed("convert(bigint, (rand() * -9223372036854775808) + (rand() * 9223372036854775807))")},

		queryir.DBDiffYear:        {arity: []int{2}, value: dateDiff("year")},
		queryir.DBDiffMonth:       {arity: []int{2}, value: dateDiff("month")},
		queryir.DBDiffDay:         {arity: []int{2}, value: dateDiff("day")},
		queryir.DBDiffHour:        {arity: []int{2}, value: dateDiff("hour")},
		queryir.DBDiffMinute:      {arity: []int{2}, value: dateDiff("minute")},
		queryir.DBDiffSecond:      {arity: []int{2}, value: dateDiff("second")},
		queryir.DBDiffMillisecond: {arity: []int{2}, value: dateDiff("millisecond")},
		queryir.DBAddYear:         {arity: []int{2}, value: dateAdd("year")},
		queryir.DBAddMonth:        {arity: []int{2}, value: dateAdd("month")},
		queryir.DBAddDay:          {arity: []int{2}, value: dateAdd("day")},
		queryir.DBAddHour:         {arity: []int{2}, value: dateAdd("hour")},
		queryir.DBAddMinute:       {arity: []int{2}, value: dateAdd("minute")},
		queryir.DBAddSecond:       {arity: []int{2}, value: dateAdd("second")},
		queryir.DBAddMillisecond:  {arity: []int{2}, value: dateAdd("millisecond")},

		queryir.MethodConvert: {arity: []int{1}, value: convertArg},
		queryir.MethodParse:   {arity: []int{1}, value: convertArg},
	}
}

func methodName(n *queryir.MethodCall) string {
	return n.Declaring + "." + n.Name
}

func (s *Session) lookupMethod(n *queryir.MethodCall) (methodRule, error) {
	rule, ok := methodRules[n.ID]
	if !ok {
		return methodRule{}, sqlerr.Unsupported(methodName(n), "unrecognized method")
	}
	if !slices.Contains(rule.arity, len(n.Args)) {
		return methodRule{}, sqlerr.InvalidShape(fmt.Sprintf("%s/%d", methodName(n), len(n.Args)),
			"no overload takes %d arguments", len(n.Args))
	}
	if rule.receiver && n.Receiver == nil {
		return methodRule{}, sqlerr.InvalidShape(methodName(n), "instance method without a receiver")
	}
	if rule.on != nil && !rule.on.ok(n.Receiver.Type()) {
		return methodRule{}, sqlerr.InvalidShape(methodName(n), "receiver is %s, want %s", n.Receiver.Type(), rule.on.name)
	}
	for i, arg := range n.Args {
		if i >= len(rule.params) {
			break
		}
		if p := rule.params[i]; !p.ok(arg.Type()) {
			return methodRule{}, sqlerr.InvalidShape(methodName(n), "argument %d is %s, want %s", i, arg.Type(), p.name)
		}
	}
	return rule, nil
}

func hasNegatedForm(id queryir.MethodID) bool {
	return methodRules[id].predicate != nil
}

func (s *Session) methodValue(n *queryir.MethodCall) (Expr, error) {
	rule, err := s.lookupMethod(n)
	if err != nil {
		return Expr{}, err
	}
	if rule.value == nil {
		return s.predicateAsValue(n)
	}
	return rule.value(s, n)
}

func (s *Session) methodPredicate(n *queryir.MethodCall, negated bool) (Expr, error) {
	rule, err := s.lookupMethod(n)
	if err != nil {
		return Expr{}, err
	}
	if rule.predicate != nil {
		return rule.predicate(s, n, negated)
	}
	if negated {
		return s.bitIs(n, "0")
	}
	return s.bitIs(n, "1")
}

// operands renders the receiver (if any) followed by the arguments.
func (s *Session) operands(n *queryir.MethodCall) ([]Expr, error) {
	fields := n.Args
	if n.Receiver != nil {
		fields = append([]queryir.Field{n.Receiver}, n.Args...)
	}
	out := make([]Expr, len(fields))
	for i, f := range fields {
		e, err := s.value(f)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (s *Session) args(n *queryir.MethodCall) ([]Expr, error) {
	out := make([]Expr, len(n.Args))
	for i, f := range n.Args {
		e, err := s.value(f)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func fixed(sql string) func(*Session, *queryir.MethodCall) (Expr, error) {
	return func(*Session, *queryir.MethodCall) (Expr, error) {
		return Expr{SQL: sql, Class: ClassCall}, nil
	}
}

// receiverCall renders name(receiver, args...).
func receiverCall(name string) func(*Session, *queryir.MethodCall) (Expr, error) {
	return func(s *Session, n *queryir.MethodCall) (Expr, error) {
		ops, err := s.operands(n)
		if err != nil {
			return Expr{}, err
		}
		return call(name, ops...), nil
	}
}

// argsCall renders name(args...) for static methods.
func argsCall(name string) func(*Session, *queryir.MethodCall) (Expr, error) {
	return func(s *Session, n *queryir.MethodCall) (Expr, error) {
		args, err := s.args(n)
		if err != nil {
			return Expr{}, err
		}
		return call(name, args...), nil
	}
}

func (s *Session) trim(x Expr) Expr {
	if s.dialect.SupportsTrim() {
		return call("trim", x)
	}
	return Expr{SQL: "ltrim(rtrim(" + arg(x) + "))", Class: ClassCall}
}

func trimFunc(s *Session, n *queryir.MethodCall) (Expr, error) {
	x, err := s.value(n.Receiver)
	if err != nil {
		return Expr{}, err
	}
	return s.trim(x), nil
}

// indexOf renders charindex(s, x[, start + 1]) - 1: charindex is 1-based and
// returns 0 when not found.
func indexOf(s *Session, n *queryir.MethodCall) (Expr, error) {
	ops, err := s.operands(n)
	if err != nil {
		return Expr{}, err
	}
	x, needle := ops[0], ops[1]
	text := "charindex(" + arg(needle) + ", " + s.collate(arg(x), n.Receiver, n.Args[0])
	if len(ops) == 3 {
		text += ", " + wrap(ops[2], ClassAdd, false) + " + 1"
	}
	return Expr{SQL: text + ") - 1", Class: ClassSubtract}, nil
}

func substring(s *Session, n *queryir.MethodCall) (Expr, error) {
	ops, err := s.operands(n)
	if err != nil {
		return Expr{}, err
	}
	x, start := ops[0], ops[1]
	text := "substring(" + arg(x) + ", " + wrap(start, ClassAdd, false) + " + 1, "
	if len(ops) == 3 {
		text += arg(ops[2])
	} else {
		text += "len(" + arg(x) + ") - " + wrap(start, ClassSubtract, true)
	}
	return Expr{SQL: text + ")", Class: ClassCall}, nil
}

// insert renders x.Insert(i, v) as head + v + tail.
func insert(s *Session, n *queryir.MethodCall) (Expr, error) {
	ops, err := s.operands(n)
	if err != nil {
		return Expr{}, err
	}
	x, at, v := ops[0], ops[1], ops[2]
	head := "substring(" + arg(x) + ", 1, " + arg(at) + ")"
	tail := "substring(" + arg(x) + ", " + wrap(at, ClassAdd, false) + " + 1, len(" + arg(x) + ") - " + wrap(at, ClassSubtract, true) + ")"
	return Expr{SQL: head + " + " + wrap(v, ClassAdd, true) + " + " + tail, Class: ClassAdd}, nil
}

func stringTest(s *Session, n *queryir.MethodCall) (x, needle Expr, err error) {
	ops, err := s.operands(n)
	if err != nil {
		return Expr{}, Expr{}, err
	}
	return ops[0], ops[1], nil
}

func startsWith(s *Session, n *queryir.MethodCall, negated bool) (Expr, error) {
	x, needle, err := stringTest(s, n)
	if err != nil {
		return Expr{}, err
	}
	index := "charindex(" + arg(needle) + ", " + s.collate(arg(x), n.Receiver, n.Args[0]) + ")"
	if negated {
		return Expr{SQL: index + " != 1", Class: ClassNotEqual}, nil
	}
	return Expr{SQL: index + " = 1", Class: ClassEqual}, nil
}

func contains(s *Session, n *queryir.MethodCall, negated bool) (Expr, error) {
	x, needle, err := stringTest(s, n)
	if err != nil {
		return Expr{}, err
	}
	index := "charindex(" + arg(needle) + ", " + s.collate(arg(x), n.Receiver, n.Args[0]) + ")"
	if negated {
		return Expr{SQL: index + " < 1", Class: ClassLessThan}, nil
	}
	return Expr{SQL: index + " >= 1", Class: ClassGreaterThanOrEqual}, nil
}

// endsWith compares the last len(needle) characters with the needle.
func endsWith(s *Session, n *queryir.MethodCall, negated bool) (Expr, error) {
	x, needle, err := stringTest(s, n)
	if err != nil {
		return Expr{}, err
	}
	tail := s.collate("right("+arg(x)+", len("+arg(needle)+"))", n.Receiver, n.Args[0])
	if negated {
		return Expr{SQL: tail + " != " + wrap(needle, ClassNotEqual, true), Class: ClassNotEqual}, nil
	}
	return Expr{SQL: tail + " = " + wrap(needle, ClassEqual, true), Class: ClassEqual}, nil
}

func isNullOrEmpty(s *Session, n *queryir.MethodCall, negated bool) (Expr, error) {
	v, err := s.value(n.Args[0])
	if err != nil {
		return Expr{}, err
	}
	x := wrap(v, ClassEqual, false)
	if negated {
		return Expr{SQL: x + " is not null and " + x + " != ''", Class: ClassAndAlso}, nil
	}
	return Expr{SQL: x + " is null or " + x + " = ''", Class: ClassOrElse}, nil
}

func isNullOrWhiteSpace(s *Session, n *queryir.MethodCall, negated bool) (Expr, error) {
	v, err := s.value(n.Args[0])
	if err != nil {
		return Expr{}, err
	}
	x := wrap(v, ClassEqual, false)
	trimmed := s.trim(v).SQL
	if negated {
		return Expr{SQL: x + " is not null and " + trimmed + " != ''", Class: ClassAndAlso}, nil
	}
	return Expr{SQL: x + " is null or " + trimmed + " = ''", Class: ClassOrElse}, nil
}

func toString(s *Session, n *queryir.MethodCall) (Expr, error) {
	recv := n.Receiver.Type()
	x, err := s.value(n.Receiver)
	if err != nil {
		return Expr{}, err
	}
	if recv.Is(ir.KindDateTime) {
		return s.formatDate(n, x)
	}
	if len(n.Args) > 0 {
		return Expr{}, sqlerr.InvalidShape(methodName(n), "format arguments are only supported for DateTime receivers")
	}
	if recv.IsString() {
		return x, nil
	}
	return s.convert(x, recv, ir.String)
}

func round(s *Session, n *queryir.MethodCall) (Expr, error) {
	args, err := s.args(n)
	if err != nil {
		return Expr{}, err
	}
	if len(args) == 1 {
		return Expr{SQL: "round(" + arg(args[0]) + ", 0)", Class: ClassCall}, nil
	}
	return call("round", args...), nil
}

func count(s *Session, n *queryir.MethodCall) (Expr, error) {
	if len(n.Args) == 0 {
		return Expr{SQL: "count(1)", Class: ClassCall}, nil
	}
	return argsCall("count")(s, n)
}

// newInt renders a random int, optionally in [min, max).
func newInt(s *Session, n *queryir.MethodCall) (Expr, error) {
	if len(n.Args) == 0 {
		return Expr{SQL: "convert(int, (rand() * 4294967295) - 2147483648)", Class: ClassCall}, nil
	}
	args, err := s.args(n)
	if err != nil {
		return Expr{}, err
	}
	lo, hi := args[0], args[1]
	span := wrap(hi, ClassSubtract, false) + " - " + wrap(lo, ClassSubtract, true)
	return Expr{
		SQL:   wrap(lo, ClassAdd, false) + " + convert(int, rand() * (" + span + "))",
		Class: ClassAdd,
	}, nil
}

func dateDiff(unit string) func(*Session, *queryir.MethodCall) (Expr, error) {
	return func(s *Session, n *queryir.MethodCall) (Expr, error) {
		args, err := s.args(n)
		if err != nil {
			return Expr{}, err
		}
		return Expr{SQL: "datediff(" + unit + ", " + arg(args[0]) + ", " + arg(args[1]) + ")", Class: ClassCall}, nil
	}
}

// dateAdd renders DBFun.AddX(date, n) as dateadd(unit, n, date).
func dateAdd(unit string) func(*Session, *queryir.MethodCall) (Expr, error) {
	return func(s *Session, n *queryir.MethodCall) (Expr, error) {
		args, err := s.args(n)
		if err != nil {
			return Expr{}, err
		}
		return Expr{SQL: "dateadd(" + unit + ", " + arg(args[1]) + ", " + arg(args[0]) + ")", Class: ClassCall}, nil
	}
}

// convertArg renders Convert.ToXxx(x) and Xxx.Parse(x) as a conversion to the
// call's result type.
func convertArg(s *Session, n *queryir.MethodCall) (Expr, error) {
	x, err := s.value(n.Args[0])
	if err != nil {
		return Expr{}, err
	}
	return s.convert(x, n.Args[0].Type(), n.DataType)
}
