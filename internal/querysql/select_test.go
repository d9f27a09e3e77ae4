package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/testutil"
)

func TestCompile_JoinFilterOrderPage(t *testing.T) {
	u := testutil.NewUsers("T0")
	o := testutil.NewOrders("T1")

	sel := &queryir.Select{
		From: &queryir.Join{
			Kind:  queryir.InnerJoin,
			Left:  u.Table,
			Right: o.Table,
			On:    queryir.Eq(u.ID, o.UserID),
		},
		Fields: queryir.Obj("Row", queryir.M("Name", u.Name), queryir.M("Amount", o.Amount)),
		Where: queryir.And(
			queryir.Gt(u.Age, queryir.Lit(18)),
			queryir.Call("String", "Contains", ir.Bool, o.Note, queryir.Lit("a")),
		),
		OrderBy: []queryir.Sort{{Field: u.Age, Descending: true}},
		Limit:   &queryir.Limit{Start: 10, Count: 10},
	}

	sql, params := compileSQL(t, dialect.Default(), sel)
	assert.Equal(t, "SELECT T0.[Name], T1.[Amount] FROM [User] AS T0 INNER JOIN [Order] AS T1 ON T0.[Id] = T1.[UserId]"+
		" WHERE T0.[Age] > @P0 and charindex(@P1, T1.[Note]) >= 1"+
		" ORDER BY T0.[Age] DESC OFFSET 10 ROWS FETCH NEXT 10 ROWS ONLY", sql)
	require.Len(t, params, 2)
	assert.Equal(t, []any{int64(18), "a"}, natives(params))
	assert.Equal(t, "P0", params[0].Name)
	assert.Equal(t, "P1", params[1].Name)

	again, againParams := compileSQL(t, dialect.Default(), sel)
	assert.Equal(t, sql, again)
	assert.Equal(t, natives(params), natives(againParams))
}

func TestCompile_Projection(t *testing.T) {
	u := testutil.NewUsers("T0")

	t.Run("star", func(t *testing.T) {
		sql, _ := compileSQL(t, dialect.Default(), &queryir.Select{From: u.Table})
		assert.Equal(t, "SELECT * FROM [User] AS T0", sql)
	})

	t.Run("aliases differ from column name", func(t *testing.T) {
		renamed := queryir.Col("T0", "Name", ir.String)
		renamed.Alias = "UserName"
		same := queryir.Col("T0", "Age", ir.Int32)
		same.Alias = "Age"
		length := queryir.Access("String", "Length", ir.Int32, u.Name)
		length.Alias = "F0"

		sel := &queryir.Select{From: u.Table, Fields: queryir.Obj("Row",
			queryir.M("UserName", renamed), queryir.M("Age", same), queryir.M("Len", length))}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name] AS UserName, T0.[Age], len(T0.[Name]) AS F0 FROM [User] AS T0", sql)
	})

	t.Run("shared nodes are projected once", func(t *testing.T) {
		sel := &queryir.Select{From: u.Table, Fields: queryir.Obj("Row",
			queryir.M("A", u.Name), queryir.M("B", u.Name), queryir.M("C", u.Age))}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name], T0.[Age] FROM [User] AS T0", sql)
	})

	t.Run("nested objects are flattened", func(t *testing.T) {
		inner := queryir.Obj("Inner", queryir.M("Age", u.Age))
		sel := &queryir.Select{From: u.Table, Fields: queryir.Obj("Outer",
			queryir.M("Name", u.Name), queryir.M("Inner", inner))}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name], T0.[Age] FROM [User] AS T0", sql)
	})

	t.Run("boolean projection is materialized", func(t *testing.T) {
		sel := &queryir.Select{From: u.Table, Fields: queryir.Gt(u.Age, queryir.Lit(18))}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT iif(T0.[Age] > @P0, convert(bit, 1), convert(bit, 0)) FROM [User] AS T0", sql)
	})
}

func TestCompile_Clauses(t *testing.T) {
	o := testutil.NewOrders("T1")
	total := queryir.Call("DBFun", "Sum", ir.Decimal, nil, o.Amount)
	total.Alias = "Total"

	sel := &queryir.Select{
		From:     o.Table,
		Fields:   queryir.Obj("Row", queryir.M("UserId", o.UserID), queryir.M("Total", total)),
		GroupBy:  []queryir.Field{o.UserID},
		OrderBy:  []queryir.Sort{{Field: total, Descending: true}, {Field: o.UserID}},
		Distinct: true,
	}
	sql, _ := compileSQL(t, dialect.Default(), sel)
	assert.Equal(t, "SELECT DISTINCT T1.[UserId], sum(T1.[Amount]) AS Total FROM [Order] AS T1"+
		" GROUP BY T1.[UserId] ORDER BY sum(T1.[Amount]) DESC, T1.[UserId]", sql)
}

func TestCompile_PagingTiers(t *testing.T) {
	u := testutil.NewUsers("T0")
	ordered := func(start, count int) *queryir.Select {
		return &queryir.Select{
			From:    u.Table,
			Fields:  u.Name,
			OrderBy: []queryir.Sort{{Field: u.Age}},
			Limit:   &queryir.Limit{Start: start, Count: count},
		}
	}
	unordered := &queryir.Select{From: u.Table, Fields: u.Name, Limit: &queryir.Limit{Start: 10, Count: 5}}

	tests := []struct {
		name  string
		build int
		query *queryir.Select
		want  string
	}{
		{"top", dialect.DefaultBuild, ordered(0, 5), "SELECT TOP 5 T0.[Name] FROM [User] AS T0 ORDER BY T0.[Age]"},
		{"top on oldest build", 515, ordered(0, 5), "SELECT TOP 5 T0.[Name] FROM [User] AS T0 ORDER BY T0.[Age]"},
		{"offset fetch", dialect.BuildOffsetFetch, ordered(10, 5), "SELECT T0.[Name] FROM [User] AS T0 ORDER BY T0.[Age] OFFSET 10 ROWS FETCH NEXT 5 ROWS ONLY"},
		{"offset fetch without order", dialect.DefaultBuild, unordered, "SELECT T0.[Name] FROM [User] AS T0 ORDER BY (select 0) OFFSET 10 ROWS FETCH NEXT 5 ROWS ONLY"},
		{"row number", dialect.BuildRowNumber, ordered(10, 5), "SELECT LimitTable.[Name] FROM (SELECT row_number() over(ORDER BY T0.[Age]) AS RowNumber, T0.[Name] FROM [User] AS T0) AS LimitTable WHERE RowNumber BETWEEN 11 AND 15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := compileSQL(t, dialect.New(tt.build), tt.query)
			assert.Equal(t, tt.want, sql)
		})
	}

	t.Run("row number without order", func(t *testing.T) {
		_, _, err := newCompiler(dialect.New(dialect.BuildRowNumber)).Compile(unordered)
		require.Error(t, err)
		assert.True(t, sqlerr.IsCapability(err))
	})

	t.Run("offset below row number tier", func(t *testing.T) {
		_, _, err := newCompiler(dialect.New(515)).Compile(ordered(10, 5))
		require.Error(t, err)
		assert.True(t, sqlerr.IsCapability(err))
	})
}

func TestCompile_RowNumberPaging(t *testing.T) {
	u := testutil.NewUsers("T0")
	v := testutil.NewUsers("T1")
	o := testutil.NewOrders("T1")
	d := dialect.New(655)

	t.Run("scalar subquery keeps one column", func(t *testing.T) {
		amount := &queryir.Select{
			From:    o.Table,
			Fields:  o.Amount,
			OrderBy: []queryir.Sort{{Field: o.Amount}},
			Limit:   &queryir.Limit{Start: 3, Count: 1},
		}
		sel := &queryir.Select{From: u.Table, Fields: queryir.Sub(amount, ir.Decimal)}
		sql, _ := compileSQL(t, d, sel)
		assert.Equal(t, "SELECT (SELECT LimitTable.[Amount] FROM (SELECT row_number() over(ORDER BY T1.[Amount]) AS RowNumber, T1.[Amount]"+
			" FROM [Order] AS T1) AS LimitTable WHERE RowNumber BETWEEN 4 AND 4) FROM [User] AS T0", sql)
	})

	t.Run("membership subquery", func(t *testing.T) {
		recent := &queryir.Select{
			From:    o.Table,
			Fields:  o.UserID,
			OrderBy: []queryir.Sort{{Field: o.PlacedAt, Descending: true}},
			Limit:   &queryir.Limit{Start: 5, Count: 10},
		}
		in := mustBinary(t)(queryir.In(u.ID, queryir.Sub(recent, ir.Int32)))
		sql, _ := compileSQL(t, d, &queryir.Select{From: u.Table, Fields: u.Name, Where: in})
		assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 WHERE T0.[Id] in (SELECT LimitTable.[UserId] FROM (SELECT row_number()"+
			" over(ORDER BY T1.[PlacedAt] DESC) AS RowNumber, T1.[UserId] FROM [Order] AS T1) AS LimitTable WHERE RowNumber BETWEEN 6 AND 15)", sql)
	})

	t.Run("clashing and unnamed columns get derived names", func(t *testing.T) {
		sel := &queryir.Select{
			From: &queryir.Join{Kind: queryir.InnerJoin, Left: u.Table, Right: v.Table, On: queryir.Eq(u.ID, v.ID)},
			Fields: queryir.Obj("Row",
				queryir.M("A", u.Name),
				queryir.M("B", v.Name),
				queryir.M("C", queryir.Bin(queryir.OpAdd, u.Age, queryir.Lit(1)))),
			OrderBy: []queryir.Sort{{Field: u.Age}},
			Limit:   &queryir.Limit{Start: 2, Count: 3},
		}
		sql, _ := compileSQL(t, d, sel)
		assert.Equal(t, "SELECT LimitTable.[Name], LimitTable.F0 AS Name, LimitTable.F1 FROM (SELECT row_number() over(ORDER BY T0.[Age]) AS RowNumber,"+
			" T0.[Name], T1.[Name] AS F0, T0.[Age] + @P0 AS F1 FROM [User] AS T0 INNER JOIN [User] AS T1 ON T0.[Id] = T1.[Id])"+
			" AS LimitTable WHERE RowNumber BETWEEN 3 AND 5", sql)
	})

	t.Run("aliased column", func(t *testing.T) {
		total := queryir.Bin(queryir.OpAdd, u.Age, queryir.Lit(1))
		total.Alias = "NextAge"
		sel := &queryir.Select{
			From:    u.Table,
			Fields:  total,
			OrderBy: []queryir.Sort{{Field: u.Name}},
			Limit:   &queryir.Limit{Start: 1, Count: 1},
		}
		sql, _ := compileSQL(t, d, sel)
		assert.Equal(t, "SELECT LimitTable.NextAge FROM (SELECT row_number() over(ORDER BY T0.[Name]) AS RowNumber, T0.[Age] + @P0 AS NextAge"+
			" FROM [User] AS T0) AS LimitTable WHERE RowNumber BETWEEN 2 AND 2", sql)
	})

	t.Run("set operand", func(t *testing.T) {
		paged := &queryir.Select{
			From:    u.Table,
			Fields:  u.Name,
			OrderBy: []queryir.Sort{{Field: u.Age}},
			Limit:   &queryir.Limit{Start: 10, Count: 5},
		}
		union := &queryir.Compound{Op: queryir.Union, Left: paged, Right: &queryir.Select{From: v.Table, Fields: v.Name}}
		sql, _ := compileSQL(t, d, union)
		assert.Equal(t, "SELECT * FROM (SELECT LimitTable.[Name] FROM (SELECT row_number() over(ORDER BY T0.[Age]) AS RowNumber, T0.[Name]"+
			" FROM [User] AS T0) AS LimitTable WHERE RowNumber BETWEEN 11 AND 15) AS SetOperand UNION SELECT T1.[Name] FROM [User] AS T1", sql)
	})

	t.Run("distinct rows are numbered after deduplication", func(t *testing.T) {
		sel := &queryir.Select{
			From:     u.Table,
			Fields:   u.Name,
			OrderBy:  []queryir.Sort{{Field: u.Name, Descending: true}},
			Limit:    &queryir.Limit{Start: 10, Count: 5},
			Distinct: true,
		}
		sql, _ := compileSQL(t, d, sel)
		assert.Equal(t, "SELECT LimitTable.[Name] FROM (SELECT row_number() over(ORDER BY DistinctTable.[Name] DESC) AS RowNumber, DistinctTable.*"+
			" FROM (SELECT DISTINCT T0.[Name] FROM [User] AS T0) AS DistinctTable) AS LimitTable WHERE RowNumber BETWEEN 11 AND 15", sql)
	})

	t.Run("distinct sort key must be projected", func(t *testing.T) {
		sel := &queryir.Select{
			From:     u.Table,
			Fields:   u.Name,
			OrderBy:  []queryir.Sort{{Field: u.Age}},
			Limit:    &queryir.Limit{Start: 10, Count: 5},
			Distinct: true,
		}
		_, _, err := newCompiler(d).Compile(sel)
		require.Error(t, err)
		assert.True(t, sqlerr.IsInvalidShape(err))
	})

	t.Run("field list required", func(t *testing.T) {
		sel := &queryir.Select{
			From:    u.Table,
			OrderBy: []queryir.Sort{{Field: u.Age}},
			Limit:   &queryir.Limit{Start: 10, Count: 5},
		}
		_, _, err := newCompiler(d).Compile(sel)
		require.Error(t, err)
		assert.True(t, sqlerr.IsInvalidShape(err))
	})
}

func TestCompile_From(t *testing.T) {
	u := testutil.NewUsers("T0")
	o := testutil.NewOrders("T1")

	t.Run("left join", func(t *testing.T) {
		sel := &queryir.Select{
			From:   &queryir.Join{Kind: queryir.LeftJoin, Left: u.Table, Right: o.Table, On: queryir.Eq(u.ID, o.UserID)},
			Fields: u.Name,
		}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 LEFT JOIN [Order] AS T1 ON T0.[Id] = T1.[UserId]", sql)
	})

	t.Run("cross join", func(t *testing.T) {
		sel := &queryir.Select{
			From:   &queryir.Join{Kind: queryir.CrossJoin, Left: u.Table, Right: o.Table},
			Fields: u.Name,
		}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 CROSS JOIN [Order] AS T1", sql)
	})

	t.Run("right nested join", func(t *testing.T) {
		o2 := testutil.NewOrders("T2")
		inner := &queryir.Join{Kind: queryir.FullJoin, Left: o.Table, Right: o2.Table, On: queryir.Eq(o.ID, o2.ID)}
		sel := &queryir.Select{
			From:   &queryir.Join{Kind: queryir.RightJoin, Left: u.Table, Right: inner, On: queryir.Eq(u.ID, o.UserID)},
			Fields: u.Name,
		}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 RIGHT JOIN ([Order] AS T1 FULL JOIN [Order] AS T2 ON T1.[Id] = T2.[Id]) ON T0.[Id] = T1.[UserId]", sql)
	})

	t.Run("passthrough derived collapses", func(t *testing.T) {
		src := &queryir.Derived{Query: &queryir.Select{From: &queryir.Table{Name: "User", Alias: "T5"}}, Alias: "T3"}
		sel := &queryir.Select{From: src, Fields: queryir.Ref("T3", "Name", ir.String)}
		sql, _ := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T3.[Name] FROM [User] AS T3", sql)
	})

	t.Run("derived with filter is a sub-select", func(t *testing.T) {
		adults := &queryir.Select{From: u.Table, Fields: u.Name, Where: queryir.Ge(u.Age, queryir.Lit(18))}
		sel := &queryir.Select{
			From:   &queryir.Derived{Query: adults, Alias: "T3"},
			Fields: queryir.Ref("T3", "Name", ir.String),
			Where:  queryir.Ne(queryir.Ref("T3", "Name", ir.String), queryir.Lit("root")),
		}
		sql, params := compileSQL(t, dialect.Default(), sel)
		assert.Equal(t, "SELECT T3.[Name] FROM (SELECT T0.[Name] FROM [User] AS T0 WHERE T0.[Age] >= @P0) AS T3 WHERE T3.[Name] != @P1", sql)
		assert.Equal(t, []any{int64(18), "root"}, natives(params))
	})
}

func TestCompile_InSubquery(t *testing.T) {
	u := testutil.NewUsers("T0")
	o := testutil.NewOrders("T1")
	buyers := &queryir.Select{From: o.Table, Fields: o.UserID}
	in := mustBinary(t)(queryir.In(u.ID, queryir.Sub(buyers, ir.Int32)))

	sql, _ := compileSQL(t, dialect.Default(), &queryir.Select{From: u.Table, Fields: u.Name, Where: in})
	assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 WHERE T0.[Id] in (SELECT T1.[UserId] FROM [Order] AS T1)", sql)
}

func TestCompile_Compound(t *testing.T) {
	a := testutil.NewUsers("T0")
	b := testutil.NewUsers("T1")
	c := testutil.NewUsers("T2")
	left := &queryir.Select{From: a.Table, Fields: a.Name}
	right := &queryir.Select{From: b.Table, Fields: b.Name}
	third := &queryir.Select{From: c.Table, Fields: c.Name}

	tests := []struct {
		name string
		q    *queryir.Compound
		want string
	}{
		{"union", &queryir.Compound{Op: queryir.Union, Left: left, Right: right},
			"SELECT T0.[Name] FROM [User] AS T0 UNION SELECT T1.[Name] FROM [User] AS T1"},
		{"union all", &queryir.Compound{Op: queryir.UnionAll, Left: left, Right: right},
			"SELECT T0.[Name] FROM [User] AS T0 UNION ALL SELECT T1.[Name] FROM [User] AS T1"},
		{"except", &queryir.Compound{Op: queryir.Except, Left: left, Right: right},
			"SELECT T0.[Name] FROM [User] AS T0 EXCEPT SELECT T1.[Name] FROM [User] AS T1"},
		{"left chain", &queryir.Compound{Op: queryir.Union, Left: &queryir.Compound{Op: queryir.Union, Left: left, Right: right}, Right: third},
			"SELECT T0.[Name] FROM [User] AS T0 UNION SELECT T1.[Name] FROM [User] AS T1 UNION SELECT T2.[Name] FROM [User] AS T2"},
		{"intersect over union", &queryir.Compound{Op: queryir.Intersect, Left: &queryir.Compound{Op: queryir.Union, Left: left, Right: right}, Right: third},
			"(SELECT T0.[Name] FROM [User] AS T0 UNION SELECT T1.[Name] FROM [User] AS T1) INTERSECT SELECT T2.[Name] FROM [User] AS T2"},
		{"right compound", &queryir.Compound{Op: queryir.Except, Left: left, Right: &queryir.Compound{Op: queryir.Union, Left: right, Right: third}},
			"SELECT T0.[Name] FROM [User] AS T0 EXCEPT (SELECT T1.[Name] FROM [User] AS T1 UNION SELECT T2.[Name] FROM [User] AS T2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := compileSQL(t, dialect.Default(), tt.q)
			assert.Equal(t, tt.want, sql)
		})
	}

	t.Run("intersect on oldest build", func(t *testing.T) {
		_, _, err := newCompiler(dialect.New(515)).Compile(&queryir.Compound{Op: queryir.Intersect, Left: left, Right: right})
		require.Error(t, err)
		assert.True(t, sqlerr.IsCapability(err))
	})

	t.Run("paged operand", func(t *testing.T) {
		top := &queryir.Select{From: b.Table, Fields: b.Name, OrderBy: []queryir.Sort{{Field: b.Age}}, Limit: &queryir.Limit{Count: 3}}
		sql, _ := compileSQL(t, dialect.Default(), &queryir.Compound{Op: queryir.Union, Left: left, Right: top})
		assert.Equal(t, "SELECT T0.[Name] FROM [User] AS T0 UNION SELECT * FROM (SELECT TOP 3 T1.[Name] FROM [User] AS T1 ORDER BY T1.[Age]) AS SetOperand", sql)
	})

	t.Run("ordered operand without limit", func(t *testing.T) {
		sorted := &queryir.Select{From: b.Table, Fields: b.Name, OrderBy: []queryir.Sort{{Field: b.Age}}}
		_, _, err := newCompiler(dialect.Default()).Compile(&queryir.Compound{Op: queryir.Union, Left: left, Right: sorted})
		require.Error(t, err)
		assert.True(t, sqlerr.IsInvalidShape(err))
	})
}

func TestCompile_InlineLiterals(t *testing.T) {
	u := testutil.NewUsers("T0")
	sel := &queryir.Select{From: u.Table, Fields: u.ID, Where: queryir.Eq(u.Name, queryir.Lit("O'Brien"))}

	sql, params, err := newCompiler(dialect.Default(), WithInlineLiterals()).Compile(sel)
	require.NoError(t, err)
	assert.Equal(t, "SELECT T0.[Id] FROM [User] AS T0 WHERE T0.[Name] = N'O''Brien'", sql)
	assert.Empty(t, params)
}

func TestCompile_Rejects(t *testing.T) {
	c := newCompiler(dialect.Default())

	_, _, err := c.Compile(nil)
	require.Error(t, err)

	_, _, err = c.Compile(&queryir.Select{})
	require.Error(t, err)
	assert.True(t, sqlerr.IsModelViolation(err))
	assert.Contains(t, err.Error(), "invalid statement")
}
