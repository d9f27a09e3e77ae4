// Package queryir provides the expression-graph model that the SQL Server
// compiler consumes.
//
// ARCHITECTURE:
//
// An upstream query builder (a LINQ-like front end, a fixture loader, or
// hand-written code) produces a graph of nodes; querysql walks the graph and
// emits parameterized T-SQL:
//
//	[query builder] → [queryir graph] → [querysql] → (sql, parameters)
//
// NODES:
//
// Field is a sealed interface over twelve node kinds:
//   - Constant: a literal value of a known runtime type
//   - Original: a column of a base table or view (Alias.[Column])
//   - Quote: a column re-exposed by a nested query (Alias.Name)
//   - Unary: Not, Negate, Convert
//   - Binary: arithmetic, bitwise, comparison, logical, Like, In, Coalesce
//   - Conditional: test ? a : b
//   - Switch: value-matched multi-way choice with a default
//   - MemberAccess: a recognized property (string length, date parts)
//   - MethodCall: a recognized method (string, math, aggregate, conversion)
//   - Subquery: a nested query used as a scalar or as an In source
//   - Object: a composite shape (constructor arguments + named members)
//   - Collection: a composite list (constructor arguments + elements)
//
// Nodes are immutable once built and are shared by pointer: the compiler
// uses pointer identity to de-duplicate projected columns and to cache
// rendered text. Type switches over Field therefore list pointer types only.
//
// RECOGNIZED MEMBERS AND METHODS:
//
// MemberAccess and MethodCall carry a symbolic MemberID/MethodID resolved when
// the node is built (see LookupMethod, LookupMember). The compiler dispatches
// on the identifier; nodes whose identifier is Unknown still construct but
// fail to compile with an unsupported-construct error that names the
// declaring type and member.
//
// SOURCES AND STATEMENTS:
//
// Source is the FROM tree (Table, View, Derived, Join). Query is Select or
// Compound (UNION / UNION ALL / INTERSECT / EXCEPT). Statement adds Insert,
// InsertFrom, Update and Delete.
//
// VALIDATION:
//
// Constructors that can observe a structural violation (NewBinary, In, NotIn)
// return an error immediately. Validate re-checks a whole statement so that
// graphs assembled from struct literals get the same guarantees.
package queryir
