// Package textutil provides filename sanitization helpers shared by the job
// identifier generator and the output path builders.
package textutil
