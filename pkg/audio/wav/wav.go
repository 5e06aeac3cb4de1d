// Package wav implements minimal WAV container encoding and decoding for the
// formats the engine reads: mono or multi-channel PCM-16 and IEEE float32.
// Multi-channel audio is mixed down to mono on decode.
package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3

	headerSize = 44
)

// Data holds decoded audio samples in the amplitude domain [-1.0, 1.0]
type Data struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the audio duration in seconds
func (d *Data) Duration() float64 {
	if d.SampleRate <= 0 {
		return 0
	}
	return float64(len(d.Samples)) / float64(d.SampleRate)
}

type fmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Decode parses WAV data and returns normalized mono float samples
func Decode(data []byte) (*Data, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", headerSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV file: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV file: missing WAVE format marker")
	}

	var format *fmtChunk
	var pcm []byte

	// Walk the RIFF chunks; tolerate extra chunks (LIST, fact, etc.)
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("invalid fmt chunk: %d bytes", chunkSize)
			}
			var fc fmtChunk
			if err := binary.Read(bytes.NewReader(data[body:body+16]), binary.LittleEndian, &fc); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			format = &fc
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}

		if format != nil && pcm != nil {
			break
		}
	}

	if format == nil {
		return nil, fmt.Errorf("invalid WAV file: no fmt chunk")
	}
	if pcm == nil {
		return nil, fmt.Errorf("invalid WAV file: no data chunk")
	}
	if format.NumChannels == 0 {
		return nil, fmt.Errorf("invalid WAV file: zero channels")
	}

	samples, err := decodeSamples(format, pcm)
	if err != nil {
		return nil, err
	}

	return &Data{
		Samples:    samples,
		SampleRate: int(format.SampleRate),
	}, nil
}

// decodeSamples converts raw PCM bytes to mono float samples
func decodeSamples(format *fmtChunk, pcm []byte) ([]float32, error) {
	channels := int(format.NumChannels)

	switch {
	case format.AudioFormat == formatPCM && format.BitsPerSample == 16:
		frames := len(pcm) / (2 * channels)
		samples := make([]float32, frames)
		for i := 0; i < frames; i++ {
			var sum float32
			for c := 0; c < channels; c++ {
				raw := int16(binary.LittleEndian.Uint16(pcm[(i*channels+c)*2:]))
				sum += float32(raw) / 32768.0
			}
			samples[i] = sum / float32(channels)
		}
		return samples, nil

	case format.AudioFormat == formatIEEEFloat && format.BitsPerSample == 32:
		frames := len(pcm) / (4 * channels)
		samples := make([]float32, frames)
		for i := 0; i < frames; i++ {
			var sum float32
			for c := 0; c < channels; c++ {
				bits := binary.LittleEndian.Uint32(pcm[(i*channels+c)*4:])
				sum += math.Float32frombits(bits)
			}
			samples[i] = sum / float32(channels)
		}
		return samples, nil

	default:
		return nil, fmt.Errorf("unsupported WAV format: audio_format=%d bits=%d",
			format.AudioFormat, format.BitsPerSample)
	}
}

// Encode writes mono float samples as a 16-bit PCM WAV file
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio samples")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(samples)*2))

	writeHeader(buf, formatPCM, 16, sampleRate, dataSize)

	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		if err := binary.Write(buf, binary.LittleEndian, int16(s*32767.0)); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// EncodeFloat32 writes mono float samples as an IEEE float32 WAV file
func EncodeFloat32(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio samples")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 4)
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(samples)*4))

	writeHeader(buf, formatIEEEFloat, 32, sampleRate, dataSize)

	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}

// writeHeader writes a canonical 44-byte mono WAV header
func writeHeader(buf *bytes.Buffer, audioFormat uint16, bits uint16, sampleRate int, dataSize uint32) {
	bytesPerSample := uint32(bits / 8)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, fmtChunk{
		AudioFormat:   audioFormat,
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * bytesPerSample,
		BlockAlign:    uint16(bytesPerSample),
		BitsPerSample: bits,
	})
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
}

// ReadFile reads and decodes a WAV file from disk
func ReadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file %s: %w", path, err)
	}
	return Decode(raw)
}

// WriteFile encodes samples as 16-bit PCM and writes them to disk
func WriteFile(path string, samples []float32, sampleRate int) error {
	data, err := Encode(samples, sampleRate)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write WAV file %s: %w", path, err)
	}
	return nil
}
