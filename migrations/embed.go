// Package migrations embeds the schema migrations for every store.
package migrations

import "embed"

// SQLite holds the ledger store migrations under the "sqlite" directory.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// ClickHouse holds the audit store migrations under the "clickhouse" directory.
//
//go:embed clickhouse/*.sql
var ClickHouse embed.FS
