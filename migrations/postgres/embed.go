// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the schema for the login-event history store.
//
//go:embed *.sql
var FS embed.FS
