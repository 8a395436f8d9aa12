// Package migrations carries the backend schemas inside the binary, so
// deployments and tests never depend on a checkout layout.
package migrations

import "embed"

// PostgresFS holds the wallet_metrics schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the trades and settlements schemas.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
