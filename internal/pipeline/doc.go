// Package pipeline runs the four subtitle stages for one job: extract audio,
// transcribe it, write the caption track and burn it into the video.
//
// Stages run strictly in order and each runs once. The first failure stops the
// run and is returned as a *StageError naming the stage; the underlying error
// still matches one of the exported sentinels with errors.Is. Artifacts of
// earlier stages are left in place.
package pipeline
