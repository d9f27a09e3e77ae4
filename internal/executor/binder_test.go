package executor

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/querysql"
)

func named(t *testing.T, arg any) sql.NamedArg {
	t.Helper()
	n, ok := arg.(sql.NamedArg)
	require.True(t, ok, "got %T", arg)
	return n
}

func TestMSSQLBinder(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	id := uuid.MustParse("0193a3b4-5f6e-7c8d-9e0f-112233445566")
	amount := decimal.RequireFromString("12.5")

	params := []querysql.Parameter{
		{Name: "P0", Value: ir.IRString("ann"), Type: ir.String},
		{Name: "P1", Value: ir.IRGuid(id), Type: ir.Guid},
		{Name: "P2", Value: ir.IRDateTime(at), Type: ir.DateTime},
		{Name: "P3", Value: ir.IRDateTime(at), Type: ir.DateTimeOffset},
		{Name: "P4", Value: ir.IRDuration(90 * time.Minute), Type: ir.TimeSpan},
		{Name: "P5", Value: ir.IRInt(7), Type: ir.Int32},
		{Name: "P6", Value: ir.IRDecimal{Decimal: amount}, Type: ir.Decimal},
		{Name: "P7", Value: ir.IRNull{}, Type: ir.NullableOf(ir.String)},
	}
	args := MSSQLBinder{}.Bind(params)
	require.Len(t, args, len(params))

	want := []any{
		mssql.VarChar("ann"),
		mssql.UniqueIdentifier(id),
		mssql.DateTime1(at),
		mssql.DateTimeOffset(at),
		"01:30:00.0000000",
		int64(7),
		amount,
		nil,
	}
	for i, arg := range args {
		n := named(t, arg)
		assert.Equal(t, params[i].Name, n.Name)
		assert.Equal(t, want[i], n.Value, "parameter %s", n.Name)
	}
}

func TestMSSQLBinder_UnicodeStrings(t *testing.T) {
	d := dialect.New(dialect.DefaultBuild, dialect.WithColumnType(ir.KindString, "nvarchar(255)"))
	args := MSSQLBinder{Dialect: d}.Bind([]querysql.Parameter{
		{Name: "P0", Value: ir.IRString("名前"), Type: ir.String},
	})
	assert.Equal(t, "名前", named(t, args[0]).Value)
}

func TestPlainBinder(t *testing.T) {
	args := PlainBinder{}.Bind([]querysql.Parameter{
		{Name: "P0", Value: ir.IRString("ann"), Type: ir.String},
		{Name: "P1", Value: ir.IRDuration(time.Second), Type: ir.TimeSpan},
		{Name: "P2", Value: ir.IRBool(true), Type: ir.Bool},
	})
	require.Len(t, args, 3)
	assert.Equal(t, "ann", named(t, args[0]).Value)
	assert.Equal(t, int64(time.Second), named(t, args[1]).Value)
	assert.Equal(t, true, named(t, args[2]).Value)
}
