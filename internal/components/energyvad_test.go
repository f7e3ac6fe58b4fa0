package components

import (
	"math"
	"testing"

	"timbre/internal/testsupport"
)

func TestDetectSpansFindsVoicedRegions(t *testing.T) {
	const rate = 16000
	clip := testsupport.Concat(
		testsupport.Silence(rate, 0.5),
		testsupport.Tone(rate, 1.0, 440, 0.5),
		testsupport.Silence(rate, 1.0),
		testsupport.Tone(rate, 0.5, 440, 0.5),
	)

	spans := detectSpans(clip, 0.03, 0.01, 0.3, 0.25)
	if len(spans) != 2 {
		t.Fatalf("spans = %v", spans)
	}
	if math.Abs(spans[0].start-0.5) > 0.05 || math.Abs(spans[0].stop-1.5) > 0.05 {
		t.Fatalf("first span = %+v", spans[0])
	}
	if math.Abs(spans[1].start-2.5) > 0.05 {
		t.Fatalf("second span = %+v", spans[1])
	}
}

func TestDetectSpansMergesShortGaps(t *testing.T) {
	const rate = 16000
	clip := testsupport.Concat(
		testsupport.Tone(rate, 0.5, 440, 0.5),
		testsupport.Silence(rate, 0.1),
		testsupport.Tone(rate, 0.5, 440, 0.5),
	)

	spans := detectSpans(clip, 0.03, 0.01, 0.3, 0.25)
	if len(spans) != 1 {
		t.Fatalf("gap under the merge threshold must collapse, got %v", spans)
	}
}

func TestDetectSpansDropsShortBursts(t *testing.T) {
	const rate = 16000
	clip := testsupport.Concat(
		testsupport.Silence(rate, 1.0),
		testsupport.Tone(rate, 0.05, 440, 0.5),
		testsupport.Silence(rate, 1.0),
	)

	spans := detectSpans(clip, 0.03, 0.01, 0.3, 0.25)
	if len(spans) != 0 {
		t.Fatalf("burst shorter than the minimum must be dropped, got %v", spans)
	}
}

func TestDetectSpansSilenceOnly(t *testing.T) {
	spans := detectSpans(testsupport.Silence(16000, 2.0), 0.03, 0.01, 0.3, 0.25)
	if len(spans) != 0 {
		t.Fatalf("spans = %v", spans)
	}
}
