// Package query defines the data form of single-table predicates and row
// updates: Condition, Filter, and Updater.
//
// Values here are built per request, from the JSON wire encoding (wire.go),
// from the text syntax (parse.go), or in code with Where/And/Or. None of them
// touch SQL. Validate checks a structure against a trusted schema.Schema;
// the querysql package turns validated structures into statements.
//
// Validation is structural only: column existence, operator whitelist, and
// connector sequencing. Literal types are checked by the binder, because the
// declared column type is only consulted at compile time.
//
// Filters are flat. There is no nesting and no NOT; a Filter of n clauses
// is n conditions joined by n-1 AND/OR connectors.
package query
