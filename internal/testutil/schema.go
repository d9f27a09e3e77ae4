package testutil

import (
	"io"
	"log/slog"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
)

// Users is the sample [User] table.
type Users struct {
	Table     *queryir.Table
	ID        *queryir.Original
	Name      *queryir.Original
	Age       *queryir.Original
	Email     *queryir.Original
	Active    *queryir.Original
	CreatedAt *queryir.Original
}

// NewUsers returns the [User] table under alias.
func NewUsers(alias string) *Users {
	return &Users{
		Table:     &queryir.Table{Name: "User", Alias: alias},
		ID:        queryir.Col(alias, "Id", ir.Int32),
		Name:      queryir.Col(alias, "Name", ir.String),
		Age:       queryir.Col(alias, "Age", ir.Int32),
		Email:     queryir.Col(alias, "Email", ir.NullableOf(ir.String)),
		Active:    queryir.Col(alias, "Active", ir.Bool),
		CreatedAt: queryir.Col(alias, "CreatedAt", ir.DateTime),
	}
}

// Shape returns the row shape of the table, one member per column.
func (u *Users) Shape() *queryir.Object {
	return queryir.Obj("User",
		queryir.M("Id", u.ID),
		queryir.M("Name", u.Name),
		queryir.M("Age", u.Age),
		queryir.M("Email", u.Email),
		queryir.M("Active", u.Active),
		queryir.M("CreatedAt", u.CreatedAt),
	)
}

// Orders is the sample [Order] table.
type Orders struct {
	Table    *queryir.Table
	ID       *queryir.Original
	UserID   *queryir.Original
	Amount   *queryir.Original
	Status   *queryir.Original
	PlacedAt *queryir.Original
	Note     *queryir.Original
	Token    *queryir.Original
}

// NewOrders returns the [Order] table under alias.
func NewOrders(alias string) *Orders {
	return &Orders{
		Table:    &queryir.Table{Name: "Order", Alias: alias},
		ID:       queryir.Col(alias, "Id", ir.Int64),
		UserID:   queryir.Col(alias, "UserId", ir.Int32),
		Amount:   queryir.Col(alias, "Amount", ir.Decimal),
		Status:   queryir.Col(alias, "Status", ir.EnumOf("OrderStatus")),
		PlacedAt: queryir.Col(alias, "PlacedAt", ir.DateTime),
		Note:     queryir.Col(alias, "Note", ir.NullableOf(ir.String)),
		Token:    queryir.Col(alias, "Token", ir.Guid),
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
