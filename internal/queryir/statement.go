package queryir

// Statement is anything the compiler turns into a command.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	statementNode() // Marker method - seals interface to this package
}

// Insert is INSERT INTO Table(Columns) VALUES (Values).
type Insert struct {
	Table   *Table
	Columns []*Original
	Values  []Field
}

// InsertFrom is INSERT INTO Table(columns) <Query>.
//
// Shape describes the target table row: each member maps a member name to
// an Original column. The query's projection must be an Object without
// constructor arguments; each of its members is matched by name against
// Shape to find the target column.
type InsertFrom struct {
	Table *Table
	Shape *Object
	Query Query
}

// Assignment is one SET pair of an Update.
type Assignment struct {
	Column *Original
	Value  Field
}

// Update is UPDATE <alias> SET ... FROM <From> [WHERE <Where>].
// Every assigned column must belong to the same source alias.
type Update struct {
	Set   []Assignment
	From  Source
	Where Field
}

// Delete is DELETE <alias> FROM <From> [WHERE <Where>].
// Exactly one target is supported.
type Delete struct {
	Targets []*Table
	From    Source
	Where   Field
}

func (*Select) statementNode()     {}
func (*Compound) statementNode()   {}
func (*Insert) statementNode()     {}
func (*InsertFrom) statementNode() {}
func (*Update) statementNode()     {}
func (*Delete) statementNode()     {}
