package ffmpeg

import (
	"reflect"
	"testing"
)

func TestSegmentName(t *testing.T) {
	if got := SegmentName("clip", 2, "_", false); got != "clip_2.wav" {
		t.Fatalf("name = %q", got)
	}
	if got := SegmentName("clip", 2, "-", false); got != "clip-2.wav" {
		t.Fatalf("name = %q", got)
	}
	if got := SegmentName("clip", 2, "_", true); got != "clip.wav" {
		t.Fatalf("keep-only-first name = %q", got)
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/in/a.tar.wav"); got != "a.tar" {
		t.Fatalf("stem = %q", got)
	}
	if got := Stem("plain"); got != "plain" {
		t.Fatalf("stem = %q", got)
	}
}

func TestCutArgs(t *testing.T) {
	got := CutArgs("in.mp3", "out.wav", 1.5, 3.25, Options{})
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", "1.5",
		"-to", "3.25",
		"-y", "-i", "in.mp3",
		"-ab", "256k",
		"-ac", "1",
		"-ar", "16000",
		"out.wav",
		"-dn", "-sn",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v", got)
	}
}

func TestConvertArgsWithCodec(t *testing.T) {
	got := ConvertArgs("in.m4a", "out.wav", Options{SampleRate: 44100, Channels: 2, Codec: "pcm_s16le"})
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", "in.m4a", "-vn",
		"-ab", "256k",
		"-ac", "2",
		"-ar", "44100",
		"-acodec", "pcm_s16le",
		"out.wav",
		"-dn", "-sn",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v", got)
	}
}
