package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"timbre/internal/media/wavio"
)

// Tone synthesizes a sine clip.
func Tone(sampleRate int, seconds, frequency, amplitude float64) wavio.Audio {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
	}
	return wavio.Audio{SampleRate: sampleRate, Samples: samples}
}

// Silence synthesizes an all-zero clip.
func Silence(sampleRate int, seconds float64) wavio.Audio {
	return wavio.Audio{
		SampleRate: sampleRate,
		Samples:    make([]float64, int(seconds*float64(sampleRate))),
	}
}

// Concat joins clips that share a sample rate.
func Concat(clips ...wavio.Audio) wavio.Audio {
	if len(clips) == 0 {
		return wavio.Audio{}
	}
	out := wavio.Audio{SampleRate: clips[0].SampleRate}
	for _, clip := range clips {
		out.Samples = append(out.Samples, clip.Samples...)
	}
	return out
}

// WriteWAV persists a clip, creating parent directories as needed.
func WriteWAV(t testing.TB, path string, audio wavio.Audio) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := wavio.EncodeFile(path, audio); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
