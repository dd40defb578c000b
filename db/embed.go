// Package db holds the versioned SQL migrations, one directory per
// supported dialect, embedded into the binary.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
