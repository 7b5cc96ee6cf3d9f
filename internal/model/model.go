// Package model declares the record types the service stores and registers
// their schemas.
package model

import "github.com/roach88/notesql/internal/schema"

// Note is a published note.
type Note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Source  string `json:"source"`
	PubDate int64  `json:"pub_date"`
}

// Definition implements schema.Record.
func (Note) Definition() schema.Definition {
	return schema.Definition{
		Table: "notes",
		Columns: []schema.ColumnDef{
			{Name: "id", Type: schema.PrimaryKey},
			{Name: "title", Type: schema.Text},
			{Name: "author", Type: schema.Text},
			{Name: "source", Type: schema.Text},
			{Name: "pub_date", Type: schema.Integer},
		},
	}
}

// User is an account row. Credential checks live outside this module; only
// the table shape is declared here.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         int64  `json:"role"`
}

// Definition implements schema.Record.
func (User) Definition() schema.Definition {
	return schema.Definition{
		Table: "users",
		Columns: []schema.ColumnDef{
			{Name: "id", Type: schema.PrimaryKey},
			{Name: "name", Type: schema.Text},
			{Name: "password_hash", Type: schema.Text},
			{Name: "role", Type: schema.Integer},
		},
	}
}

// Records lists every record type compiled into the binary.
func Records() []schema.Record {
	return []schema.Record{Note{}, User{}}
}

// Definitions returns the definitions of Records, ready for schema.Build.
func Definitions() []schema.Definition {
	return schema.FromRecords(Records()...)
}
