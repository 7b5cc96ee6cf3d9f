// Package ir provides the value types that flow through notesql.
//
// This package contains leaf types only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is sealed: String, Int, Real, Bool
//   - Literals are untyped until the binder matches them to a column
//   - Documents carry only String, Int, and Real cells, in schema order
//   - Canonical JSON (sorted keys, NFC strings) is used for hashing and
//     golden traces
package ir
