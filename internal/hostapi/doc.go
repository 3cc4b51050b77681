// Package hostapi serves registered nodes over HTTP for hosts that drive
// nodes remotely.
//
// Routes:
//
//	GET  /health
//	GET  /nodes
//	GET  /nodes/:id
//	POST /nodes/:id/run
//	GET  /jobs
//	GET  /jobs/:id
//
// Run requests block until the node finishes. Failures are reported with the
// failed stage, the error kind and, for external tools, the exit code and the
// tail of stderr.
package hostapi
