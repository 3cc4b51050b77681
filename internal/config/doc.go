// Package config loads, normalizes, and validates subnode configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN and SUBNODE_WHISPER_API_KEY. The Config type centralizes the
// artifact directories, the transcription backend, encoder settings, and the
// caption formatting switches so every pipeline stage receives them through
// construction instead of process-wide globals.
package config
