package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Options carries the target audio format for conversions and cuts. The
// zero value selects the pipeline-wide target: 16 kHz mono PCM WAV, which
// every downstream feature stage assumes.
type Options struct {
	Binary     string
	SampleRate int
	Channels   int
	BitRate    string
	Codec      string
}

func (o Options) binary() string {
	if strings.TrimSpace(o.Binary) != "" {
		return o.Binary
	}
	return "ffmpeg"
}

func (o Options) sampleRate() int {
	if o.SampleRate > 0 {
		return o.SampleRate
	}
	return 16000
}

func (o Options) channels() int {
	if o.Channels > 0 {
		return o.Channels
	}
	return 1
}

func (o Options) bitRate() string {
	if strings.TrimSpace(o.BitRate) != "" {
		return o.BitRate
	}
	return "256k"
}

// Available reports whether the ffmpeg binary can be found.
func Available(binary string) error {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// Stem returns the file's base name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SegmentName builds the output name for segment index of a source stem:
// "<stem><separator><index>.wav", collapsed to "<stem>.wav" under the
// keep-only-first-segment policy.
func SegmentName(stem string, index int, separator string, keepOnlyFirst bool) string {
	if keepOnlyFirst {
		return stem + ".wav"
	}
	return fmt.Sprintf("%s%s%d.wav", stem, separator, index)
}

// CutArgs builds the argument list extracting [start, stop) seconds of
// input into output at the target format.
func CutArgs(input, output string, start, stop float64, o Options) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-to", formatSeconds(stop),
		"-y", "-i", input,
		"-ab", o.bitRate(),
		"-ac", strconv.Itoa(o.channels()),
		"-ar", strconv.Itoa(o.sampleRate()),
		output,
		"-dn", "-sn",
	}
}

// ConvertArgs builds the argument list converting input to output at the
// target format.
func ConvertArgs(input, output string, o Options) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", input, "-vn",
		"-ab", o.bitRate(),
		"-ac", strconv.Itoa(o.channels()),
		"-ar", strconv.Itoa(o.sampleRate()),
	}
	if strings.TrimSpace(o.Codec) != "" {
		args = append(args, "-acodec", o.Codec)
	}
	return append(args, output, "-dn", "-sn")
}

// Cut extracts one segment of input into outputDir, returning the written
// path. The caller controls the segment-naming policy.
func Cut(ctx context.Context, input, outputDir string, start, stop float64, index int, separator string, keepOnlyFirst bool, o Options) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	output := filepath.Join(outputDir, SegmentName(Stem(input), index, separator, keepOnlyFirst))
	if err := run(ctx, o.binary(), CutArgs(input, output, start, stop, o)); err != nil {
		return "", err
	}
	return output, nil
}

// Convert transcodes input into output at the target format.
func Convert(ctx context.Context, input, output string, o Options) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return run(ctx, o.binary(), ConvertArgs(input, output, o))
}

func run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
