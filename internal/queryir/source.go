package queryir

import "fmt"

// Source is a node of the FROM tree.
//
// This is a sealed interface - only types in this package implement it.
type Source interface {
	sourceNode() // Marker method - seals interface to this package
}

// Table is a base table leaf: [Name] AS Alias.
type Table struct {
	Name  string
	Alias string
}

// View is a view leaf. It renders exactly like Table.
type View struct {
	Name  string
	Alias string
}

// Derived is a nested-query leaf: (query) AS Alias. Columns it projects are
// referenced from outside with Quote nodes.
type Derived struct {
	Query Query
	Alias string
}

// JoinKind enumerates join operators.
type JoinKind int

const (
	InnerJoin JoinKind = iota + 1
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullJoin:
		return "full"
	case CrossJoin:
		return "cross"
	default:
		return fmt.Sprintf("JoinKind(%d)", int(k))
	}
}

// Join combines two sources. On is required for every kind except
// CrossJoin, which must not carry one.
type Join struct {
	Kind  JoinKind
	Left  Source
	Right Source
	On    Field
}

func (*Table) sourceNode()   {}
func (*View) sourceNode()    {}
func (*Derived) sourceNode() {}
func (*Join) sourceNode()    {}

// Query is a row-producing statement.
//
// This is a sealed interface - only Select and Compound implement it.
type Query interface {
	Statement
	queryNode() // Marker method - seals interface to this package
}

// Sort is one ORDER BY key.
type Sort struct {
	Field      Field
	Descending bool
}

// Limit is a row window. Start is the number of rows to skip; Count is the
// number of rows to return and must be positive.
type Limit struct {
	Start int
	Count int
}

// Select describes one SELECT:
//
//	SELECT [DISTINCT] <Fields> FROM <From> [WHERE <Where>]
//	  [GROUP BY <GroupBy>] [ORDER BY <OrderBy>] [<Limit>]
//
// Fields may be a basic node, an Object or a Collection; nil selects *.
// Where must be boolean.
type Select struct {
	From     Source
	Fields   Field
	Where    Field
	GroupBy  []Field
	OrderBy  []Sort
	Limit    *Limit
	Distinct bool
}

// SetOp enumerates set operators between queries.
type SetOp int

const (
	Union SetOp = iota + 1
	UnionAll
	Intersect
	Except
)

func (op SetOp) String() string {
	switch op {
	case Union:
		return "union"
	case UnionAll:
		return "union all"
	case Intersect:
		return "intersect"
	case Except:
		return "except"
	default:
		return fmt.Sprintf("SetOp(%d)", int(op))
	}
}

// Compound combines two queries with a set operator. To filter, sort or page
// a compound, wrap it in a Derived source of an outer Select.
type Compound struct {
	Op    SetOp
	Left  Query
	Right Query
}

func (*Select) queryNode()   {}
func (*Compound) queryNode() {}

// Projection returns the projected fields of q: the Select's Fields, or the
// leftmost operand's for a Compound.
func Projection(q Query) Field {
	switch n := q.(type) {
	case *Select:
		return n.Fields
	case *Compound:
		return Projection(n.Left)
	default:
		return nil
	}
}
