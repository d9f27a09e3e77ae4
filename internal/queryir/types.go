package queryir

import (
	"fmt"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
)

// Field is a node in an expression graph.
//
// This is a sealed interface - only types in this package implement it.
type Field interface {
	// Kind returns the node kind.
	Kind() FieldKind
	// Type returns the runtime type the node evaluates to.
	Type() *ir.Type

	fieldNode() // Marker method - seals interface to this package
}

// FieldKind enumerates node kinds.
type FieldKind int

const (
	KindConstant FieldKind = iota + 1
	KindOriginal
	KindQuote
	KindUnary
	KindBinary
	KindConditional
	KindSwitch
	KindMember
	KindMethod
	KindSubquery
	KindObject
	KindCollection
)

var fieldKindNames = [...]string{
	KindConstant:    "Constant",
	KindOriginal:    "Original",
	KindQuote:       "Quote",
	KindUnary:       "Unary",
	KindBinary:      "Binary",
	KindConditional: "Conditional",
	KindSwitch:      "Switch",
	KindMember:      "MemberAccess",
	KindMethod:      "MethodCall",
	KindSubquery:    "Subquery",
	KindObject:      "Object",
	KindCollection:  "Collection",
}

func (k FieldKind) String() string {
	if k > 0 && int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Constant is a literal value.
//
// A Constant whose Value is IRNull (or nil) is a typed null. A Constant whose
// Value is an IRSequence is only meaningful as the right operand of In/NotIn.
type Constant struct {
	DataType *ir.Type
	Value    ir.IRValue
	Alias    string
}

// Original is a column of a base table or view.
//
// Source is the alias of the FROM-tree leaf the column belongs to (e.g. "T0").
// An empty Source renders the bare column name.
type Original struct {
	DataType *ir.Type
	Source   string
	Name     string
	Alias    string
}

// Quote is a column projected by a nested query and referenced from outside
// it. Name is the alias the inner query gave the column.
type Quote struct {
	DataType *ir.Type
	Source   string
	Name     string
	Alias    string
}

// Unary applies a unary operator.
type Unary struct {
	Op       UnaryOp
	Operand  Field
	DataType *ir.Type
	Alias    string
}

// Binary applies a binary operator.
type Binary struct {
	Op       BinaryOp
	Left     Field
	Right    Field
	DataType *ir.Type
	Alias    string
}

// Conditional is test ? IfTrue : IfFalse.
type Conditional struct {
	Test     Field
	IfTrue   Field
	IfFalse  Field
	DataType *ir.Type
	Alias    string
}

// Case is one arm of a Switch. The arm matches when the switched value
// equals any of Tests.
type Case struct {
	Tests []Field
	Body  Field
}

// Switch matches Value against each case in order and yields the first
// matching body, or Default.
type Switch struct {
	Value    Field
	Cases    []Case
	Default  Field
	DataType *ir.Type
	Alias    string
}

// MemberAccess reads a recognized property. Receiver is nil for static
// members such as DateTime.Now.
type MemberAccess struct {
	ID        MemberID
	Declaring string
	Name      string
	Receiver  Field
	DataType  *ir.Type
	Alias     string
}

// MethodCall invokes a recognized method. Receiver is nil for static methods
// (Math.Round, DBFun.Count, String.IsNullOrEmpty, Convert.ToInt32, ...).
type MethodCall struct {
	ID        MethodID
	Declaring string
	Name      string
	Receiver  Field
	Args      []Field
	DataType  *ir.Type
	Alias     string
}

// Subquery nests a query. Used as a value it must yield exactly one row and
// one column; as the right operand of In/NotIn it must yield one column.
type Subquery struct {
	Query    Query
	DataType *ir.Type
	Alias    string
}

// NamedField is a named member of an Object.
type NamedField struct {
	Name  string
	Field Field
}

// Object is a composite projection: constructor arguments followed by
// named member initializers.
type Object struct {
	DataType *ir.Type
	Args     []Field
	Members  []NamedField
}

// Collection is a composite list projection.
type Collection struct {
	DataType *ir.Type
	Args     []Field
	Elements []Field
}

func (*Constant) Kind() FieldKind     { return KindConstant }
func (*Original) Kind() FieldKind     { return KindOriginal }
func (*Quote) Kind() FieldKind        { return KindQuote }
func (*Unary) Kind() FieldKind        { return KindUnary }
func (*Binary) Kind() FieldKind       { return KindBinary }
func (*Conditional) Kind() FieldKind  { return KindConditional }
func (*Switch) Kind() FieldKind       { return KindSwitch }
func (*MemberAccess) Kind() FieldKind { return KindMember }
func (*MethodCall) Kind() FieldKind   { return KindMethod }
func (*Subquery) Kind() FieldKind     { return KindSubquery }
func (*Object) Kind() FieldKind       { return KindObject }
func (*Collection) Kind() FieldKind   { return KindCollection }

func (f *Constant) Type() *ir.Type     { return f.DataType }
func (f *Original) Type() *ir.Type     { return f.DataType }
func (f *Quote) Type() *ir.Type        { return f.DataType }
func (f *Unary) Type() *ir.Type        { return f.DataType }
func (f *Binary) Type() *ir.Type       { return f.DataType }
func (f *Conditional) Type() *ir.Type  { return f.DataType }
func (f *Switch) Type() *ir.Type       { return f.DataType }
func (f *MemberAccess) Type() *ir.Type { return f.DataType }
func (f *MethodCall) Type() *ir.Type   { return f.DataType }
func (f *Subquery) Type() *ir.Type     { return f.DataType }
func (f *Object) Type() *ir.Type       { return f.DataType }
func (f *Collection) Type() *ir.Type   { return f.DataType }

func (*Constant) fieldNode()     {}
func (*Original) fieldNode()     {}
func (*Quote) fieldNode()        {}
func (*Unary) fieldNode()        {}
func (*Binary) fieldNode()       {}
func (*Conditional) fieldNode()  {}
func (*Switch) fieldNode()       {}
func (*MemberAccess) fieldNode() {}
func (*MethodCall) fieldNode()   {}
func (*Subquery) fieldNode()     {}
func (*Object) fieldNode()       {}
func (*Collection) fieldNode()   {}

// IsBasic reports whether f renders to a single SQL expression, i.e. it is
// not an Object or Collection.
func IsBasic(f Field) bool {
	switch f.(type) {
	case *Object, *Collection:
		return false
	default:
		return f != nil
	}
}

// AliasOf returns the projection alias assigned to a basic node.
func AliasOf(f Field) string {
	switch n := f.(type) {
	case *Constant:
		return n.Alias
	case *Original:
		return n.Alias
	case *Quote:
		return n.Alias
	case *Unary:
		return n.Alias
	case *Binary:
		return n.Alias
	case *Conditional:
		return n.Alias
	case *Switch:
		return n.Alias
	case *MemberAccess:
		return n.Alias
	case *MethodCall:
		return n.Alias
	case *Subquery:
		return n.Alias
	default:
		return ""
	}
}

// SetAlias sets the projection alias of f. It reports false for composite
// fields, which carry no alias.
func SetAlias(f Field, alias string) bool {
	switch n := f.(type) {
	case *Constant:
		n.Alias = alias
	case *Original:
		n.Alias = alias
	case *Quote:
		n.Alias = alias
	case *Unary:
		n.Alias = alias
	case *Binary:
		n.Alias = alias
	case *Conditional:
		n.Alias = alias
	case *Switch:
		n.Alias = alias
	case *MemberAccess:
		n.Alias = alias
	case *MethodCall:
		n.Alias = alias
	case *Subquery:
		n.Alias = alias
	default:
		return false
	}
	return true
}

// IntrinsicName returns the name a column reference already carries in SQL
// without an alias. It is empty for computed nodes.
func IntrinsicName(f Field) string {
	switch n := f.(type) {
	case *Original:
		return n.Name
	case *Quote:
		return n.Name
	default:
		return ""
	}
}

// IsNullConstant reports whether f is a Constant holding null.
func IsNullConstant(f Field) bool {
	c, ok := f.(*Constant)
	return ok && ir.IsNull(c.Value)
}
