// Package schema is the trusted table registry.
//
// A Registry is built once during process startup from Definitions, either
// supplied by record types in code (Record) or read from CUE files
// (LoadCUE). After Build returns, nothing mutates it; every request handler
// receives the same *Registry by reference.
//
// Table and column names leave this package only as Ident values. Ident has
// no exported constructor, so the SQL compiler cannot be handed a
// request-supplied string as an identifier.
package schema
