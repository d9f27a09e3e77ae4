// Package executor hands compiled statements to database/sql.
//
// It is the boundary where a compiled command meets a driver:
//
//   - Compile the statement with a querysql.Compiler
//   - Bind the parameter list as sql.Named arguments (@P0, @P1, ...)
//   - Call ExecContext or QueryContext on the *sql.DB
//
// # Binders
//
//   - MSSQLBinder: wire types for go-mssqldb. Strings whose column type is
//     varchar bind as mssql.VarChar; guids as mssql.UniqueIdentifier;
//     datetimes as mssql.DateTime1; offsets as mssql.DateTimeOffset.
//   - PlainBinder: driver-neutral values. Used with go-sqlite3 in tests.
//
// Connections, transactions and row materialization belong to the caller.
package executor
