// Package job defines the transient unit of work handled by the subtitle
// pipeline: the source video, the immutable style parameters that govern the
// burned-in captions, and the unique identifier that names every artifact the
// job produces.
package job
