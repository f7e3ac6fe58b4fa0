// Package ffprobe shells out to ffprobe and parses its JSON output into a
// small typed result. Only the container and stream fields the pipeline
// reads (duration, sample rate, channels) are modeled.
package ffprobe
