// Package migrations embeds the SQL schema for the optional audit ledger.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
