// Package components ships the built-in pipeline components: audio file
// discovery, WAV conversion, energy-based voice activity detection,
// spectral feature extraction, band-energy classification, and cosine
// diarization. Builtin returns them registered under their categories.
package components
