// Package db provides the SQLite persistence layer for bridgelog.
// It keeps two kinds of data: the activity table written by the sink server
// (and by the direct store sink), and a small key/value table that backs the
// logger's durable local mirror.
//
// This package is responsible for:
// - Establishing the database connection and applying migrations (`db.go`, `migrations/`).
// - Implementing the domain repository interfaces (`ActivityRepository`,
//   `StatsRepository`, `KeyValueStore`) on a single Repository type.
// - Converting between domain structs and their database representations
//   (`types.go`).
package db
