package querysql

import (
	"slices"
	"strconv"
	"strings"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// querySQL renders a query. applyAlias controls whether projected fields
// carry their AS aliases; nested value and membership subqueries omit them.
func (s *Session) querySQL(q queryir.Query, applyAlias bool) (string, error) {
	switch n := q.(type) {
	case *queryir.Select:
		return s.selectSQL(n, applyAlias)
	case *queryir.Compound:
		return s.compoundSQL(n, applyAlias)
	default:
		return "", sqlerr.Model("Query", "nil query")
	}
}

// selectClauses holds the rendered parts of one SELECT.
type selectClauses struct {
	distinct string
	fields   string
	from     string
	where    string
	groupBy  string
	orderBy  string
	columns  []column
	sortKeys []sortKey
}

// column is one projected scalar. alias is set only when it differs from
// the column's intrinsic name.
type column struct {
	text      string
	alias     string
	intrinsic string
}

// name is the column's name in the result set; empty for an unnamed
// computed column.
func (c column) name() string {
	if c.alias != "" {
		return c.alias
	}
	return c.intrinsic
}

type sortKey struct {
	text string
	desc bool
}

func (k sortKey) String() string {
	if k.desc {
		return k.text + " DESC"
	}
	return k.text
}

func (s *Session) selectSQL(sel *queryir.Select, applyAlias bool) (string, error) {
	var c selectClauses
	var err error
	if sel.Distinct {
		c.distinct = "DISTINCT "
	}
	if sel.Fields == nil {
		c.fields = "*"
	} else {
		if c.columns, err = s.columns(sel.Fields); err != nil {
			return "", err
		}
		c.fields = joinColumns(c.columns, applyAlias)
	}
	if c.from, err = s.fromSQL(sel.From); err != nil {
		return "", err
	}
	if c.where, err = s.whereSQL(sel.Where); err != nil {
		return "", err
	}
	if len(sel.GroupBy) > 0 {
		keys := make([]string, len(sel.GroupBy))
		for i, g := range sel.GroupBy {
			v, err := s.value(g)
			if err != nil {
				return "", err
			}
			keys[i] = arg(v)
		}
		c.groupBy = " GROUP BY " + strings.Join(keys, ", ")
	}
	if len(sel.OrderBy) > 0 {
		keys := make([]string, len(sel.OrderBy))
		for i, o := range sel.OrderBy {
			v, err := s.value(o.Field)
			if err != nil {
				return "", err
			}
			c.sortKeys = append(c.sortKeys, sortKey{text: arg(v), desc: o.Descending})
			keys[i] = c.sortKeys[i].String()
		}
		c.orderBy = " ORDER BY " + strings.Join(keys, ", ")
	}

	body := c.fields + " FROM " + c.from + c.where + c.groupBy
	l := sel.Limit
	if l == nil {
		return "SELECT " + c.distinct + body + c.orderBy, nil
	}
	if l.Start == 0 {
		return "SELECT " + c.distinct + "TOP " + strconv.Itoa(l.Count) + " " + body + c.orderBy, nil
	}

	tier := s.dialect.Paging()
	s.logger.Debug("paging",
		"tier", tier.String(),
		"start", l.Start,
		"count", l.Count)
	switch tier {
	case dialect.PagingOffsetFetch:
		orderBy := c.orderBy
		if orderBy == "" {
			orderBy = " ORDER BY (select 0)"
		}
		return "SELECT " + c.distinct + body + orderBy +
			" OFFSET " + strconv.Itoa(l.Start) + " ROWS FETCH NEXT " + strconv.Itoa(l.Count) + " ROWS ONLY", nil
	case dialect.PagingRowNumber:
		return s.rowNumberSQL(&c, l, applyAlias)
	default:
		return "", sqlerr.Capability("Limit", "build %d cannot skip rows; only a leading row count is available", s.dialect.Build)
	}
}

// rowNumberSQL pages with a numbered derived table:
//
//	SELECT LimitTable.[Name] FROM (SELECT row_number() over(ORDER BY ...) AS RowNumber, T0.[Name] FROM ...) AS LimitTable WHERE RowNumber BETWEEN a AND b
//
// The outer list names the projected columns so RowNumber stays out of the
// result. With DISTINCT the rows are made distinct in an inner DistinctTable
// before they are numbered, and every sort key must be a projected column.
func (s *Session) rowNumberSQL(c *selectClauses, l *queryir.Limit, applyAlias bool) (string, error) {
	if len(c.sortKeys) == 0 {
		return "", sqlerr.Capability("Limit", "row_number() paging on build %d needs at least one ORDER BY key", s.dialect.Build)
	}
	if c.columns == nil {
		return "", sqlerr.InvalidShape("Limit", "row_number() paging on build %d needs an explicit field list", s.dialect.Build)
	}

	names := derivedNames(c.columns)
	inner := make([]string, len(c.columns))
	outer := make([]string, len(c.columns))
	for i, col := range c.columns {
		inner[i] = col.text
		if names[i] != col.intrinsic {
			inner[i] += " AS " + names[i]
		}
		outer[i] = derivedRef("LimitTable", names[i], col)
		if applyAlias && col.name() != "" && col.name() != names[i] {
			outer[i] += " AS " + col.name()
		}
	}
	between := " WHERE RowNumber BETWEEN " + strconv.Itoa(l.Start+1) + " AND " + strconv.Itoa(l.Start+l.Count)
	from := " FROM " + c.from + c.where + c.groupBy

	if c.distinct == "" {
		keys := make([]string, len(c.sortKeys))
		for i, k := range c.sortKeys {
			keys[i] = k.String()
		}
		numbered := "SELECT row_number() over(ORDER BY " + strings.Join(keys, ", ") + ") AS RowNumber, " + strings.Join(inner, ", ") + from
		return "SELECT " + strings.Join(outer, ", ") + " FROM (" + numbered + ") AS LimitTable" + between, nil
	}

	keys := make([]string, len(c.sortKeys))
	for i, k := range c.sortKeys {
		j := slices.IndexFunc(c.columns, func(col column) bool { return col.text == k.text })
		if j < 0 {
			return "", sqlerr.InvalidShape("OrderBy", "with DISTINCT, ORDER BY key %s must be a projected column", k.text)
		}
		keys[i] = sortKey{text: derivedRef("DistinctTable", names[j], c.columns[j]), desc: k.desc}.String()
	}
	distinct := "SELECT DISTINCT " + strings.Join(inner, ", ") + from
	numbered := "SELECT row_number() over(ORDER BY " + strings.Join(keys, ", ") + ") AS RowNumber, DistinctTable.* FROM (" + distinct + ") AS DistinctTable"
	return "SELECT " + strings.Join(outer, ", ") + " FROM (" + numbered + ") AS LimitTable" + between, nil
}

// derivedNames gives every column a unique name usable inside a derived
// table: its own name when it has one and it is still free, F{i} otherwise.
func derivedNames(cols []column) []string {
	names := make([]string, len(cols))
	used := make(map[string]bool, len(cols))
	for i, col := range cols {
		if n := col.name(); n != "" && !used[n] {
			names[i] = n
			used[n] = true
		}
	}
	next := 0
	for i := range cols {
		if names[i] != "" {
			continue
		}
		for used[dialect.FieldAlias(next)] {
			next++
		}
		names[i] = dialect.FieldAlias(next)
		used[names[i]] = true
	}
	return names
}

// derivedRef references a derived column. Intrinsic column names keep their
// brackets; aliases are written bare.
func derivedRef(table, name string, col column) string {
	if name == col.intrinsic {
		return table + "." + dialect.QuoteName(name)
	}
	return table + "." + name
}

func joinColumns(cols []column, applyAlias bool) string {
	items := make([]string, len(cols))
	for i, col := range cols {
		items[i] = col.text
		if applyAlias && col.alias != "" {
			items[i] += " AS " + col.alias
		}
	}
	return strings.Join(items, ", ")
}

// columns flattens f into its scalar leaves. Object and Collection
// projections contribute their arguments then their members; a node shared
// by several members is projected once.
func (s *Session) columns(f queryir.Field) ([]column, error) {
	var cols []column
	seen := make(map[queryir.Field]bool)
	if err := s.appendColumns(f, seen, &cols); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, sqlerr.InvalidShape(f.Kind().String(), "projection has no columns")
	}
	return cols, nil
}

func (s *Session) appendColumns(f queryir.Field, seen map[queryir.Field]bool, cols *[]column) error {
	var children []queryir.Field
	switch n := f.(type) {
	case *queryir.Object:
		children = append(children, n.Args...)
		for _, m := range n.Members {
			children = append(children, m.Field)
		}
	case *queryir.Collection:
		children = append(append(children, n.Args...), n.Elements...)
	default:
		if seen[f] {
			return nil
		}
		seen[f] = true
		v, err := s.value(f)
		if err != nil {
			return err
		}
		col := column{text: arg(v), intrinsic: queryir.IntrinsicName(f)}
		if alias := queryir.AliasOf(f); alias != col.intrinsic {
			col.alias = alias
		}
		*cols = append(*cols, col)
		return nil
	}
	for _, c := range children {
		if err := s.appendColumns(c, seen, cols); err != nil {
			return err
		}
	}
	return nil
}

var joinKeywords = map[queryir.JoinKind]string{
	queryir.InnerJoin: "INNER JOIN",
	queryir.LeftJoin:  "LEFT JOIN",
	queryir.RightJoin: "RIGHT JOIN",
	queryir.FullJoin:  "FULL JOIN",
	queryir.CrossJoin: "CROSS JOIN",
}

func objectName(name, alias string) string {
	if alias == "" {
		return dialect.QuoteName(name)
	}
	return dialect.QuoteName(name) + " AS " + alias
}

// fromSQL renders the FROM tree. A nested query that only re-selects a table
// collapses to the table under the nested alias.
func (s *Session) fromSQL(src queryir.Source) (string, error) {
	switch n := src.(type) {
	case *queryir.Table:
		return objectName(n.Name, n.Alias), nil
	case *queryir.View:
		return objectName(n.Name, n.Alias), nil
	case *queryir.Derived:
		if name, ok := passthrough(n.Query); ok {
			return objectName(name, n.Alias), nil
		}
		sql, err := s.querySQL(n.Query, true)
		if err != nil {
			return "", err
		}
		return "(" + sql + ") AS " + n.Alias, nil
	case *queryir.Join:
		left, err := s.fromSQL(n.Left)
		if err != nil {
			return "", err
		}
		right, err := s.fromSQL(n.Right)
		if err != nil {
			return "", err
		}
		if _, nested := n.Right.(*queryir.Join); nested {
			right = "(" + right + ")"
		}
		keyword, ok := joinKeywords[n.Kind]
		if !ok {
			return "", sqlerr.Unsupported(n.Kind.String(), "unknown join kind")
		}
		if n.Kind == queryir.CrossJoin {
			return left + " " + keyword + " " + right, nil
		}
		on, err := s.predicate(n.On)
		if err != nil {
			return "", err
		}
		return left + " " + keyword + " " + right + " ON " + on.SQL, nil
	default:
		return "", sqlerr.Model("Source", "nil source")
	}
}

// passthrough reports whether q is SELECT * over a single table or view with
// no other clause.
func passthrough(q queryir.Query) (string, bool) {
	sel, ok := q.(*queryir.Select)
	if !ok || sel.Fields != nil || sel.Where != nil || len(sel.GroupBy) > 0 ||
		len(sel.OrderBy) > 0 || sel.Limit != nil || sel.Distinct {
		return "", false
	}
	switch t := sel.From.(type) {
	case *queryir.Table:
		return t.Name, true
	case *queryir.View:
		return t.Name, true
	}
	return "", false
}

var setKeywords = map[queryir.SetOp]string{
	queryir.Union:     "UNION",
	queryir.UnionAll:  "UNION ALL",
	queryir.Intersect: "INTERSECT",
	queryir.Except:    "EXCEPT",
}

// compoundSQL renders a set operation. INTERSECT binds tighter than UNION
// and EXCEPT, so a looser left operand under INTERSECT is parenthesized; a
// compound right operand always is.
func (s *Session) compoundSQL(c *queryir.Compound, applyAlias bool) (string, error) {
	keyword, ok := setKeywords[c.Op]
	if !ok {
		return "", sqlerr.Unsupported(c.Op.String(), "unsupported union operation")
	}
	if (c.Op == queryir.Intersect || c.Op == queryir.Except) && !s.dialect.SupportsSetOperators() {
		return "", sqlerr.Capability(keyword, "unsupported union operation on build %d", s.dialect.Build)
	}

	left, err := s.setOperand(c.Left, applyAlias)
	if err != nil {
		return "", err
	}
	if l, ok := c.Left.(*queryir.Compound); ok && c.Op == queryir.Intersect && l.Op != queryir.Intersect {
		left = "(" + left + ")"
	}
	right, err := s.setOperand(c.Right, applyAlias)
	if err != nil {
		return "", err
	}
	if _, ok := c.Right.(*queryir.Compound); ok {
		right = "(" + right + ")"
	}
	return left + " " + keyword + " " + right, nil
}

// setOperand renders one side of a set operation. ORDER BY is not allowed
// on an operand, so a paged operand is moved into a derived table.
func (s *Session) setOperand(q queryir.Query, applyAlias bool) (string, error) {
	sel, ok := q.(*queryir.Select)
	if !ok || (len(sel.OrderBy) == 0 && (sel.Limit == nil || sel.Limit.Start == 0)) {
		return s.querySQL(q, applyAlias)
	}
	if sel.Limit == nil {
		return "", sqlerr.InvalidShape("Compound", "a set operand can only be ordered together with a row limit")
	}
	inner, err := s.selectSQL(sel, true)
	if err != nil {
		return "", err
	}
	return "SELECT * FROM (" + inner + ") AS SetOperand", nil
}
