package audio

import (
	"bytes"
	"encoding/binary"
)

// wavHeader is the canonical 44-byte RIFF/WAVE header for raw PCM data.
type wavHeader struct {
	RiffID        [4]byte
	RiffSize      uint32
	WaveID        [4]byte
	FmtID         [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataID        [4]byte
	DataSize      uint32
}

// PCMToWAV wraps raw PCM bytes in a WAV container so recorded assistant
// speech can be inspected with ordinary audio tooling. Assistant speech is
// 24 kHz, 16-bit, mono.
func PCMToWAV(pcm []byte, sampleRate, bitsPerSample, channels int) []byte {
	bytesPerFrame := channels * bitsPerSample / 8
	h := wavHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      uint32(36 + len(pcm)),
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1, // uncompressed PCM
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * bytesPerFrame),
		BlockAlign:    uint16(bytesPerFrame),
		BitsPerSample: uint16(bitsPerSample),
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	out := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	_ = binary.Write(out, binary.LittleEndian, h)
	out.Write(pcm)
	return out.Bytes()
}
