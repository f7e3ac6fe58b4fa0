// Package wavio reads and writes the PCM WAV files the pipeline operates
// on. Decoding handles 16-bit integer and 32-bit float PCM, downmixing
// multi-channel audio to mono, which is all the conversion stage ever
// produces. Encoding exists for fixtures and tooling and always writes
// 16-bit mono PCM.
package wavio
