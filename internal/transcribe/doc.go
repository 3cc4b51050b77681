// Package transcribe converts a job's extracted audio into word-timed segments.
//
// Two backends are available: WhisperX run locally through uvx, and any
// Whisper-compatible HTTP service that supports verbose JSON with word
// timestamps. Both report times in fractional seconds; the Transcriber
// truncates them to integer milliseconds, drops words without timing, and
// clamps words whose end precedes their start.
package transcribe
