package migrations

import (
	"embed"
	"io/fs"
)

//go:embed schema/**/*.sql
var schemaFS embed.FS

// Schema returns the embedded schema filesystem.
func Schema() fs.FS {
	sub, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err) // cannot happen, the embed path is fixed
	}
	return sub
}
