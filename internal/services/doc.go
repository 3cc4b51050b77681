// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helpers that tag failures with
//     the stage that produced them and the kind of failure (media read,
//     transcription, IO, encode).
//   - A CommandRunner abstraction that captures exit codes and stderr from
//     external tools and keeps subprocess calls testable.
//
// Use these helpers when wiring new stage logic so error classification and
// observability stay uniform across the pipeline.
package services
