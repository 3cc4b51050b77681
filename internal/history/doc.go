// Package history persists a ledger of subtitle jobs in SQLite.
//
// Each pipeline run records one row: the source video, the style parameters
// it was invoked with, the stage it reached, and either the produced output
// paths or the failure classification. The ledger is informational; the
// pipeline never reads it back to resume work.
package history
