package wav

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(samples, sampleRate int, freq float64) []float32 {
	out := make([]float32, samples)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2.0*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func TestEncodeDecodeRoundTripPCM16(t *testing.T) {
	original := sineWave(4410, 44100, 440.0)

	encoded, err := Encode(original, 44100)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, 44100, decoded.SampleRate)
	require.Len(t, decoded.Samples, len(original))

	// 16-bit quantization bounds the round-trip error
	for i := range original {
		assert.InDelta(t, original[i], decoded.Samples[i], 1.0/32767.0)
	}
}

func TestEncodeDecodeRoundTripFloat32(t *testing.T) {
	original := sineWave(1024, 48000, 1000.0)

	encoded, err := EncodeFloat32(original, 48000)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, 48000, decoded.SampleRate)
	assert.Equal(t, original, decoded.Samples)
}

func TestEncodeClampsOutOfRangeSamples(t *testing.T) {
	encoded, err := Encode([]float32{2.0, -2.0}, 8000)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	require.Len(t, decoded.Samples, 2)
	assert.InDelta(t, 1.0, decoded.Samples[0], 1.0/32767.0)
	assert.InDelta(t, -1.0, decoded.Samples[1], 1.0/32767.0)
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	_, err := Encode(nil, 44100)
	assert.Error(t, err)

	_, err = Encode([]float32{0.1}, 0)
	assert.Error(t, err)

	_, err = EncodeFloat32(nil, 44100)
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too short", []byte("RIFF")},
		{"bad magic", make([]byte, 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeStereoMixesToMono(t *testing.T) {
	// Hand-build a stereo PCM-16 file: left = +0.5, right = -0.5 on every
	// frame, so the mono mixdown lands on zero.
	const frames = 16
	left := int16(16384)
	right := int16(-16384)

	pcm := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(left))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(right))
	}

	data := buildWAV(t, fmtChunk{
		AudioFormat:   formatPCM,
		NumChannels:   2,
		SampleRate:    44100,
		ByteRate:      44100 * 4,
		BlockAlign:    4,
		BitsPerSample: 16,
	}, pcm)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Samples, frames)
	for _, s := range decoded.Samples {
		assert.InDelta(t, 0.0, s, 1e-6)
	}
}

func TestDecodeSkipsExtraChunks(t *testing.T) {
	original := sineWave(256, 22050, 440.0)
	encoded, err := Encode(original, 22050)
	require.NoError(t, err)

	// Splice a LIST chunk between fmt and data
	withList := make([]byte, 0, len(encoded)+16)
	withList = append(withList, encoded[:36]...)
	withList = append(withList, []byte("LIST")...)
	withList = binary.LittleEndian.AppendUint32(withList, 8)
	withList = append(withList, []byte("INFOjunk")...)
	withList = append(withList, encoded[36:]...)
	binary.LittleEndian.PutUint32(withList[4:], uint32(len(withList)-8))

	decoded, err := Decode(withList)
	require.NoError(t, err)
	assert.Equal(t, 22050, decoded.SampleRate)
	assert.Len(t, decoded.Samples, len(original))
}

func TestDecodeRejectsUnsupportedFormat(t *testing.T) {
	data := buildWAV(t, fmtChunk{
		AudioFormat:   formatPCM,
		NumChannels:   1,
		SampleRate:    44100,
		ByteRate:      44100 * 3,
		BlockAlign:    3,
		BitsPerSample: 24,
	}, make([]byte, 48))

	_, err := Decode(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported WAV format")
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := sineWave(2048, 44100, 440.0)

	require.NoError(t, WriteFile(path, original, 44100))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, decoded.SampleRate)
	assert.Len(t, decoded.Samples, len(original))
	assert.InDelta(t, float64(len(original))/44100.0, decoded.Duration(), 1e-9)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}

// buildWAV assembles a WAV byte stream around an arbitrary fmt chunk
func buildWAV(t *testing.T, fc fmtChunk, pcm []byte) []byte {
	t.Helper()

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, []byte("WAVE")...)
	out = append(out, []byte("fmt ")...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, fc.AudioFormat)
	out = binary.LittleEndian.AppendUint16(out, fc.NumChannels)
	out = binary.LittleEndian.AppendUint32(out, fc.SampleRate)
	out = binary.LittleEndian.AppendUint32(out, fc.ByteRate)
	out = binary.LittleEndian.AppendUint16(out, fc.BlockAlign)
	out = binary.LittleEndian.AppendUint16(out, fc.BitsPerSample)
	out = append(out, []byte("data")...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}
