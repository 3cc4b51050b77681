// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Prober: runs ffprobe through an injectable command runner
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: codec, channel and sample-rate fields of one stream
//
// The audio extractor probes every source before creating job directories so
// that unreadable or silent inputs fail without side effects.
package ffprobe
