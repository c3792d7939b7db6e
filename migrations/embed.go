// Package migrations provides embedded migration SQL files for the
// persistent operation log.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
