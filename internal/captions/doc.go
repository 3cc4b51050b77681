// Package captions turns word-timed transcripts into caption tracks.
//
// Every transcribed word becomes exactly one cue; nothing is merged,
// deduplicated, or reordered. WebVTT is always written; an SRT companion is
// optional. ParseVTT and ParseSRT recover (start, end, text) triples from
// files produced here.
package captions
