// Package ffmpeg wraps the ffmpeg binary for the two operations the
// pipeline performs on audio: converting a file to the target PCM format
// and cutting a [start, stop) segment out of it. Argument construction is
// split from execution so command lines stay testable without the binary.
package ffmpeg
