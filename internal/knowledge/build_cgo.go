//go:build sqlite_vec
// +build sqlite_vec

package knowledge

// Compiled with CGO and the sqlite_vec tag. The sqlite-vec extension moves
// cosine distance into SQL, the fast path for larger knowledge bases.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// VectorExtensionAvailable selects the SQL distance path
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
