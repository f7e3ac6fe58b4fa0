package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Audio holds decoded mono samples in [-1, 1].
type Audio struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the clip length in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// DecodeFile reads and decodes a WAV file.
func DecodeFile(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()
	audio, err := Decode(f)
	if err != nil {
		return Audio{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return audio, nil
}

// Decode parses a RIFF/WAVE stream, downmixing to mono.
func Decode(r io.Reader) (Audio, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Audio{}, errNotWAV
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Audio{}, errNotWAV
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		haveFmt    bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Audio{}, errors.New("wav: missing data chunk")
			}
			return Audio{}, err
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Audio{}, fmt.Errorf("wav: short fmt chunk: %w", err)
			}
			if len(body) < 16 {
				return Audio{}, errors.New("wav: fmt chunk too small")
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return Audio{}, errors.New("wav: data chunk before fmt")
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Audio{}, fmt.Errorf("wav: short data chunk: %w", err)
			}
			samples, err := decodeSamples(body, format, channels, bitDepth)
			if err != nil {
				return Audio{}, err
			}
			return Audio{SampleRate: sampleRate, Samples: samples}, nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return Audio{}, fmt.Errorf("wav: skip %s chunk: %w", id, err)
			}
		}
		// chunks are word aligned
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && err != io.EOF {
				return Audio{}, err
			}
		}
	}
}

func decodeSamples(body []byte, format uint16, channels, bitDepth int) ([]float64, error) {
	if channels <= 0 {
		return nil, errors.New("wav: zero channels")
	}
	switch {
	case format == 1 && bitDepth == 16:
		return decodePCM16(body, channels), nil
	case format == 3 && bitDepth == 32:
		return decodeFloat32(body, channels), nil
	default:
		return nil, fmt.Errorf("wav: unsupported format %d with %d-bit depth", format, bitDepth)
	}
}

func decodePCM16(body []byte, channels int) []float64 {
	stride := 2 * channels
	n := len(body) / stride
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			offset := i*stride + c*2
			v := int16(binary.LittleEndian.Uint16(body[offset : offset+2]))
			sum += float64(v) / 32768
		}
		samples[i] = sum / float64(channels)
	}
	return samples
}

func decodeFloat32(body []byte, channels int) []float64 {
	stride := 4 * channels
	n := len(body) / stride
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			offset := i*stride + c*4
			bits := binary.LittleEndian.Uint32(body[offset : offset+4])
			sum += float64(math.Float32frombits(bits))
		}
		samples[i] = sum / float64(channels)
	}
	return samples
}

// EncodeFile writes mono 16-bit PCM WAV to path.
func EncodeFile(path string, audio Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := Encode(f, audio); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes mono 16-bit PCM WAV.
func Encode(w io.Writer, audio Audio) error {
	dataSize := uint32(len(audio.Samples) * 2)
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // integer PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(audio.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(audio.SampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	buf := make([]byte, 2)
	for _, sample := range audio.Samples {
		clamped := math.Max(-1, math.Min(1, sample))
		binary.LittleEndian.PutUint16(buf, uint16(int16(clamped*32767)))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
