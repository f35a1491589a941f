// Package db embeds the SQL migrations so production builds can run them
// without shipping the migration files alongside the binary.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
