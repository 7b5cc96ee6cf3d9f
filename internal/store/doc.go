// Package store executes dynamic queries against a relational database.
//
// Open connects with one of the registered database/sql drivers (sqlite3,
// sqlite, postgres, mysql). A Facade wraps the connection pool and runs
// Get, Update, Insert and Delete requests: validate and compile with
// querysql, acquire one connection, run one statement, materialize rows
// into ir.Documents, release the connection.
//
// # Database Configuration
//
// SQLite databases are opened with:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Every facade call logs under an operation id (UUIDv7 by default) so the
// validation, execution, and decode records of one request can be joined.
package store
