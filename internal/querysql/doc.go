// Package querysql compiles query.Filter and query.Updater values into
// parameterized SQL.
//
// Every Compile method returns (sql, binds, err). Table and column names in
// sql come from the schema; every literal is a bind coerced to the native
// Go type of its column (int64, float64, string). A literal that cannot be
// coerced fails with TYPE_MISMATCH and no statement is produced.
//
// Statements are written with ? placeholders and rebound to $n for
// Postgres. No ORDER BY is added: result order is the engine's.
package querysql
