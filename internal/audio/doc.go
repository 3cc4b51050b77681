// Package audio extracts the speech track that feeds transcription.
//
// The extractor validates and probes the source before creating anything on
// disk, then asks ffmpeg for a mono 16 kHz PCM WAV under
// <audio_dir>/<job_id>/<job_id>.wav.
package audio
