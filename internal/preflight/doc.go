// Package preflight provides readiness checks for the external tools,
// services and filesystem paths that subnode depends on.
//
// These checks run in two contexts:
//   - "subnode run" and "subnode serve" call RunAll before accepting work and
//     refuse to start when a check fails.
//   - "subnode check" renders every result, including optional ones.
//
// The transcription service check only runs for the http backend.
package preflight
