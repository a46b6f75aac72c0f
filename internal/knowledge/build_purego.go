//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package knowledge

// Compiled without CGO. Uses the pure Go SQLite driver and computes cosine
// similarity in Go, which is slower but needs no C toolchain.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable selects the SQL distance path
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
