// Package migrations embeds the wallet keystore's goose SQL migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
