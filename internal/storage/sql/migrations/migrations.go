// Package migrations embeds the goose SQL migrations applied on connect.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
