package querysql

import (
	"strings"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

func columnList(cols []*queryir.Original) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = dialect.QuoteName(c.Name)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// insertSQL renders INSERT INTO [T]([c1], [c2]) VALUES (v1, v2).
func (s *Session) insertSQL(st *queryir.Insert) (string, error) {
	values := make([]string, len(st.Values))
	for i, f := range st.Values {
		v, err := s.value(f)
		if err != nil {
			return "", err
		}
		values[i] = arg(v)
	}
	return "INSERT INTO " + dialect.QuoteName(st.Table.Name) + columnList(st.Columns) +
		" VALUES (" + strings.Join(values, ", ") + ")", nil
}

// insertFromSQL renders INSERT INTO [T](columns) <query>. The query must
// project an object whose members name members of the target shape; the
// column list follows the query's member order.
func (s *Session) insertFromSQL(st *queryir.InsertFrom) (string, error) {
	if len(st.Shape.Args) > 0 {
		return "", sqlerr.InvalidShape("InsertFrom", "target shape %s needs constructor arguments", st.Shape.DataType)
	}
	targets := make(map[string]*queryir.Original, len(st.Shape.Members))
	for _, m := range st.Shape.Members {
		col, ok := m.Field.(*queryir.Original)
		if !ok {
			return "", sqlerr.InvalidShape("InsertFrom", "target member %q is not a table column", m.Name)
		}
		targets[m.Name] = col
	}

	src, ok := queryir.Projection(st.Query).(*queryir.Object)
	if !ok {
		return "", sqlerr.InvalidShape("InsertFrom", "source query must project an object")
	}
	if len(src.Args) > 0 {
		return "", sqlerr.InvalidShape("InsertFrom", "source projection %s uses constructor arguments", src.DataType)
	}
	if len(src.Members) == 0 {
		return "", sqlerr.InvalidShape("InsertFrom", "source projection has no members")
	}

	cols := make([]*queryir.Original, len(src.Members))
	projected := make(map[queryir.Field]string, len(src.Members))
	for i, m := range src.Members {
		col, ok := targets[m.Name]
		if !ok {
			return "", sqlerr.InvalidShape("InsertFrom", "member %q has no column on %s", m.Name, st.Table.Name)
		}
		// Projections are de-duplicated by node, which would misalign columns.
		if prev, dup := projected[m.Field]; dup {
			return "", sqlerr.InvalidShape("InsertFrom", "members %q and %q project the same node", prev, m.Name)
		}
		projected[m.Field] = m.Name
		cols[i] = col
	}

	query, err := s.querySQL(st.Query, false)
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + dialect.QuoteName(st.Table.Name) + columnList(cols) + " " + query, nil
}

// updateSQL renders UPDATE alias SET alias.[c] = v FROM <from> [WHERE p].
// All assignments must target one source.
func (s *Session) updateSQL(st *queryir.Update) (string, error) {
	alias := st.Set[0].Column.Source
	for _, a := range st.Set[1:] {
		if a.Column.Source != alias {
			return "", sqlerr.Capability("Update", "assignments target both %q and %q; only one table can be updated", alias, a.Column.Source)
		}
	}
	if alias == "" {
		return "", sqlerr.InvalidShape("Update", "assignment column %q has no source alias", st.Set[0].Column.Name)
	}

	sets := make([]string, len(st.Set))
	for i, a := range st.Set {
		v, err := s.value(a.Value)
		if err != nil {
			return "", err
		}
		sets[i] = columnRef(alias, a.Column.Name) + " = " + arg(v)
	}
	from, err := s.fromSQL(st.From)
	if err != nil {
		return "", err
	}
	where, err := s.whereSQL(st.Where)
	if err != nil {
		return "", err
	}
	return "UPDATE " + alias + " SET " + strings.Join(sets, ", ") + " FROM " + from + where, nil
}

// deleteSQL renders DELETE FROM [T] when the whole of a single table is
// deleted, and DELETE alias FROM <from> [WHERE p] otherwise.
func (s *Session) deleteSQL(st *queryir.Delete) (string, error) {
	if len(st.Targets) > 1 {
		return "", sqlerr.Capability("Delete", "%d target tables; only one table can be deleted from", len(st.Targets))
	}
	target := st.Targets[0]
	if t, ok := st.From.(*queryir.Table); ok && st.Where == nil && t.Name == target.Name {
		return "DELETE FROM " + dialect.QuoteName(t.Name), nil
	}

	name := target.Alias
	if name == "" {
		name = dialect.QuoteName(target.Name)
	}
	from, err := s.fromSQL(st.From)
	if err != nil {
		return "", err
	}
	where, err := s.whereSQL(st.Where)
	if err != nil {
		return "", err
	}
	return "DELETE " + name + " FROM " + from + where, nil
}

func (s *Session) whereSQL(f queryir.Field) (string, error) {
	if f == nil {
		return "", nil
	}
	p, err := s.predicate(f)
	if err != nil {
		return "", err
	}
	return " WHERE " + p.SQL, nil
}
