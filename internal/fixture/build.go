package fixture

import (
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
)

// Build turns the fixture's statement tree into a queryir statement.
//
// The statement is a mapping with one key naming its kind:
//
//	select | union | unionAll | intersect | except
//	insert | insertFrom | update | delete
//
// Every error carries the line and column of the offending node.
func (f *Fixture) Build() (queryir.Statement, error) {
	b := newBuilder(f.Tables)
	return b.statement(&f.Statement)
}

type boundTable struct {
	def     TableDef
	source  queryir.Source
	columns map[string]*ir.Type
}

// builder resolves aliases while walking the statement tree. Derived
// sources register their projected columns under their alias so that later
// expressions can reference them as Alias.Name.
type builder struct {
	tables  map[string]*boundTable
	derived map[string]map[string]*ir.Type
}

func newBuilder(defs []TableDef) *builder {
	b := &builder{
		tables:  make(map[string]*boundTable, len(defs)),
		derived: make(map[string]map[string]*ir.Type),
	}
	for _, def := range defs {
		bt := &boundTable{def: def, columns: make(map[string]*ir.Type, len(def.Columns))}
		if def.View {
			bt.source = &queryir.View{Name: def.Name, Alias: def.Alias}
		} else {
			bt.source = &queryir.Table{Name: def.Name, Alias: def.Alias}
		}
		for col, typ := range def.Columns {
			// Checked by validateFixture.
			bt.columns[col], _ = ir.ParseType(typ)
		}
		b.tables[def.Alias] = bt
	}
	return b
}

var setOps = map[string]queryir.SetOp{
	"union":     queryir.Union,
	"unionAll":  queryir.UnionAll,
	"intersect": queryir.Intersect,
	"except":    queryir.Except,
}

func (b *builder) statement(n *yaml.Node) (queryir.Statement, error) {
	op, arg, err := single(n)
	if err != nil {
		return nil, err
	}
	switch op {
	case "insert":
		return b.insert(arg)
	case "insertFrom":
		return b.insertFrom(arg)
	case "update":
		return b.update(arg)
	case "delete":
		return b.delete(arg)
	default:
		return b.queryOp(op, n, arg)
	}
}

func (b *builder) query(n *yaml.Node) (queryir.Query, error) {
	op, arg, err := single(n)
	if err != nil {
		return nil, err
	}
	return b.queryOp(op, n, arg)
}

func (b *builder) queryOp(op string, n, arg *yaml.Node) (queryir.Query, error) {
	if op == "select" {
		return b.selectQuery(arg)
	}
	setOp, ok := setOps[op]
	if !ok {
		return nil, errorAt(n, "unknown statement kind %q", op)
	}
	items, err := sequence(arg, 2)
	if err != nil {
		return nil, err
	}
	var q queryir.Query
	for i, item := range items {
		operand, err := b.query(item)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			q = operand
			continue
		}
		q = &queryir.Compound{Op: setOp, Left: q, Right: operand}
	}
	return q, nil
}

func (b *builder) selectQuery(n *yaml.Node) (*queryir.Select, error) {
	m, err := fields(n, "from", "fields", "where", "groupBy", "orderBy", "limit", "distinct")
	if err != nil {
		return nil, err
	}
	if m["from"] == nil {
		return nil, errorAt(n, "select needs a from source")
	}
	sel := &queryir.Select{}
	// The source goes first: it registers derived aliases.
	if sel.From, err = b.source(m["from"]); err != nil {
		return nil, err
	}
	if f := m["fields"]; f != nil {
		if sel.Fields, err = b.projection(f); err != nil {
			return nil, err
		}
	}
	if w := m["where"]; w != nil {
		if sel.Where, err = b.expr(w); err != nil {
			return nil, err
		}
	}
	if g := m["groupBy"]; g != nil {
		items, err := sequence(g, 1)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			key, err := b.expr(item)
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, key)
		}
	}
	if o := m["orderBy"]; o != nil {
		if sel.OrderBy, err = b.orderBy(o); err != nil {
			return nil, err
		}
	}
	if l := m["limit"]; l != nil {
		if sel.Limit, err = limit(l); err != nil {
			return nil, err
		}
	}
	if d := m["distinct"]; d != nil {
		if err := d.Decode(&sel.Distinct); err != nil {
			return nil, errorAt(d, "distinct: %v", err)
		}
	}
	return sel, nil
}

// projection builds the select list. A sequence becomes an Object whose
// members are named by their alias, their column name, or F{i}; anything
// else is a single field.
func (b *builder) projection(n *yaml.Node) (queryir.Field, error) {
	n = deref(n)
	if n.Kind != yaml.SequenceNode {
		return b.expr(n)
	}
	obj := queryir.Obj("Row")
	for i, item := range n.Content {
		f, err := b.expr(item)
		if err != nil {
			return nil, err
		}
		name := queryir.AliasOf(f)
		if name == "" {
			name = queryir.IntrinsicName(f)
		}
		if name == "" {
			name = dialect.FieldAlias(i)
			queryir.SetAlias(f, name)
		}
		obj.Members = append(obj.Members, queryir.M(name, f))
	}
	return obj, nil
}

func (b *builder) orderBy(n *yaml.Node) ([]queryir.Sort, error) {
	items, err := sequence(n, 1)
	if err != nil {
		return nil, err
	}
	sorts := make([]queryir.Sort, 0, len(items))
	for _, item := range items {
		if !hasKey(item, "by") {
			key, err := b.expr(item)
			if err != nil {
				return nil, err
			}
			sorts = append(sorts, queryir.Sort{Field: key})
			continue
		}
		m, err := fields(item, "by", "desc")
		if err != nil {
			return nil, err
		}
		var s queryir.Sort
		if s.Field, err = b.expr(m["by"]); err != nil {
			return nil, err
		}
		if d := m["desc"]; d != nil {
			if err := d.Decode(&s.Descending); err != nil {
				return nil, errorAt(d, "desc: %v", err)
			}
		}
		sorts = append(sorts, s)
	}
	return sorts, nil
}

func limit(n *yaml.Node) (*queryir.Limit, error) {
	if _, err := fields(n, "start", "count"); err != nil {
		return nil, err
	}
	var l struct {
		Start int `yaml:"start"`
		Count int `yaml:"count"`
	}
	if err := n.Decode(&l); err != nil {
		return nil, errorAt(n, "limit: %v", err)
	}
	return &queryir.Limit{Start: l.Start, Count: l.Count}, nil
}

var joinKinds = map[string]queryir.JoinKind{
	"inner": queryir.InnerJoin,
	"left":  queryir.LeftJoin,
	"right": queryir.RightJoin,
	"full":  queryir.FullJoin,
	"cross": queryir.CrossJoin,
}

// source builds a FROM tree node: a declared alias, a join mapping, or a
// nested query with its own alias.
func (b *builder) source(n *yaml.Node) (queryir.Source, error) {
	n = deref(n)
	if n.Kind == yaml.ScalarNode {
		t, ok := b.tables[n.Value]
		if !ok {
			return nil, errorAt(n, "unknown table alias %q", n.Value)
		}
		return t.source, nil
	}

	switch {
	case hasKey(n, "join"):
		m, err := fields(n, "join", "left", "right", "on")
		if err != nil {
			return nil, err
		}
		kind, ok := joinKinds[m["join"].Value]
		if !ok {
			return nil, errorAt(m["join"], "unknown join kind %q", m["join"].Value)
		}
		if m["left"] == nil || m["right"] == nil {
			return nil, errorAt(n, "join needs left and right sources")
		}
		j := &queryir.Join{Kind: kind}
		if j.Left, err = b.source(m["left"]); err != nil {
			return nil, err
		}
		if j.Right, err = b.source(m["right"]); err != nil {
			return nil, err
		}
		if on := m["on"]; on != nil {
			if j.On, err = b.expr(on); err != nil {
				return nil, err
			}
		}
		return j, nil

	case hasKey(n, "query"):
		m, err := fields(n, "query", "as")
		if err != nil {
			return nil, err
		}
		as := m["as"]
		if as == nil || as.Value == "" {
			return nil, errorAt(n, "nested query needs an alias (as)")
		}
		if _, taken := b.tables[as.Value]; taken {
			return nil, errorAt(as, "alias %q is already bound to a table", as.Value)
		}
		q, err := b.query(m["query"])
		if err != nil {
			return nil, err
		}
		b.derived[as.Value] = b.projectedColumns(q)
		return &queryir.Derived{Query: q, Alias: as.Value}, nil

	default:
		return nil, errorAt(n, "source must be a table alias, a join or a nested query")
	}
}

// projectedColumns lists the names a nested query exposes to Quote
// references.
func (b *builder) projectedColumns(q queryir.Query) map[string]*ir.Type {
	cols := make(map[string]*ir.Type)
	switch p := queryir.Projection(q).(type) {
	case nil:
		if sel, ok := q.(*queryir.Select); ok {
			for _, t := range b.tables {
				if t.source == sel.From {
					for name, typ := range t.columns {
						cols[name] = typ
					}
				}
			}
		}
	case *queryir.Object:
		for _, m := range p.Members {
			cols[m.Name] = m.Field.Type()
		}
	default:
		name := queryir.AliasOf(p)
		if name == "" {
			name = queryir.IntrinsicName(p)
		}
		if name != "" {
			cols[name] = p.Type()
		}
	}
	return cols
}

func (b *builder) target(n *yaml.Node) (*queryir.Table, *boundTable, error) {
	n = deref(n)
	bt, ok := b.tables[n.Value]
	if n.Kind != yaml.ScalarNode || !ok {
		return nil, nil, errorAt(n, "unknown table alias %q", n.Value)
	}
	t, ok := bt.source.(*queryir.Table)
	if !ok {
		return nil, nil, errorAt(n, "%s is a view", bt.def.Name)
	}
	return t, bt, nil
}

func (b *builder) insert(n *yaml.Node) (*queryir.Insert, error) {
	m, err := fields(n, "table", "values")
	if err != nil {
		return nil, err
	}
	if m["table"] == nil || m["values"] == nil {
		return nil, errorAt(n, "insert needs table and values")
	}
	t, bt, err := b.target(m["table"])
	if err != nil {
		return nil, err
	}
	items, err := sequence(m["values"], 1)
	if err != nil {
		return nil, err
	}
	ins := &queryir.Insert{Table: t}
	for _, item := range items {
		im, err := fields(item, "column", "value")
		if err != nil {
			return nil, err
		}
		if im["column"] == nil || im["value"] == nil {
			return nil, errorAt(item, "insert value needs column and value")
		}
		name := im["column"].Value
		typ, ok := bt.columns[name]
		if !ok {
			return nil, errorAt(im["column"], "unknown column %s.%s", t.Alias, name)
		}
		v, err := b.expr(im["value"])
		if err != nil {
			return nil, err
		}
		ins.Columns = append(ins.Columns, queryir.Col(t.Alias, name, typ))
		ins.Values = append(ins.Values, v)
	}
	return ins, nil
}

func (b *builder) insertFrom(n *yaml.Node) (*queryir.InsertFrom, error) {
	m, err := fields(n, "table", "query")
	if err != nil {
		return nil, err
	}
	if m["table"] == nil || m["query"] == nil {
		return nil, errorAt(n, "insertFrom needs table and query")
	}
	t, bt, err := b.target(m["table"])
	if err != nil {
		return nil, err
	}
	q, err := b.query(m["query"])
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(bt.columns))
	for name := range bt.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	shape := queryir.Obj(t.Name)
	for _, name := range names {
		shape.Members = append(shape.Members, queryir.M(name, queryir.Col(t.Alias, name, bt.columns[name])))
	}
	return &queryir.InsertFrom{Table: t, Shape: shape, Query: q}, nil
}

func (b *builder) update(n *yaml.Node) (*queryir.Update, error) {
	m, err := fields(n, "set", "from", "where")
	if err != nil {
		return nil, err
	}
	if m["set"] == nil || m["from"] == nil {
		return nil, errorAt(n, "update needs set and from")
	}
	up := &queryir.Update{}
	if up.From, err = b.source(m["from"]); err != nil {
		return nil, err
	}
	items, err := sequence(m["set"], 1)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		im, err := fields(item, "column", "value")
		if err != nil {
			return nil, err
		}
		if im["column"] == nil || im["value"] == nil {
			return nil, errorAt(item, "assignment needs column and value")
		}
		col, err := b.expr(im["column"])
		if err != nil {
			return nil, err
		}
		orig, ok := col.(*queryir.Original)
		if !ok {
			return nil, errorAt(im["column"], "assignment target must be a table column")
		}
		v, err := b.expr(im["value"])
		if err != nil {
			return nil, err
		}
		up.Set = append(up.Set, queryir.Assignment{Column: orig, Value: v})
	}
	if w := m["where"]; w != nil {
		if up.Where, err = b.expr(w); err != nil {
			return nil, err
		}
	}
	return up, nil
}

// delete builds a Delete. Without a from source, the single target is its
// own source.
func (b *builder) delete(n *yaml.Node) (*queryir.Delete, error) {
	m, err := fields(n, "targets", "from", "where")
	if err != nil {
		return nil, err
	}
	if m["targets"] == nil {
		return nil, errorAt(n, "delete needs targets")
	}
	targets := []*yaml.Node{m["targets"]}
	if deref(m["targets"]).Kind == yaml.SequenceNode {
		if targets, err = sequence(m["targets"], 1); err != nil {
			return nil, err
		}
	}
	del := &queryir.Delete{}
	for _, tn := range targets {
		t, _, err := b.target(tn)
		if err != nil {
			return nil, err
		}
		del.Targets = append(del.Targets, t)
	}
	switch {
	case m["from"] != nil:
		if del.From, err = b.source(m["from"]); err != nil {
			return nil, err
		}
	case len(del.Targets) == 1:
		del.From = del.Targets[0]
	default:
		return nil, errorAt(n, "delete with several targets needs a from source")
	}
	if w := m["where"]; w != nil {
		if del.Where, err = b.expr(w); err != nil {
			return nil, err
		}
	}
	return del, nil
}

// deref follows YAML aliases (*name) to their anchored node.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// fields returns the entries of mapping n by key, rejecting keys outside
// allowed.
func fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "expected a mapping with keys %s", strings.Join(allowed, ", "))
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return nil, errorAt(key, "unknown field %q (expected one of %s)", key.Value, strings.Join(allowed, ", "))
		}
		if _, dup := out[key.Value]; dup {
			return nil, errorAt(key, "duplicate field %q", key.Value)
		}
		out[key.Value] = deref(n.Content[i+1])
	}
	return out, nil
}

// single returns the only key of mapping n and its value.
func single(n *yaml.Node) (string, *yaml.Node, error) {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, errorAt(n, "expected a mapping with exactly one key")
	}
	return n.Content[0].Value, deref(n.Content[1]), nil
}

func hasKey(n *yaml.Node, key string) bool {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// sequence returns the items of sequence n, which must hold at least least.
func sequence(n *yaml.Node, least int) ([]*yaml.Node, error) {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil, errorAt(n, "expected a sequence")
	}
	if len(n.Content) < least {
		return nil, errorAt(n, "expected at least %d items, got %d", least, len(n.Content))
	}
	items := make([]*yaml.Node, len(n.Content))
	for i, item := range n.Content {
		items[i] = deref(item)
	}
	return items, nil
}
