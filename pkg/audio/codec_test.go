package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/aura-assist/aura/pkg/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0xff, 0x00, 0x7f, 0x80},
		bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 1024),
	}
	for _, raw := range cases {
		got, err := Decode(Encode(raw))
		if err != nil {
			t.Fatalf("Decode(Encode(%d bytes)): %v", len(raw), err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("round trip mismatch for %d bytes", len(raw))
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not base64!!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	} else if core.TypeOf(err) != core.ErrProtocol {
		t.Fatalf("error type=%q, want %q", core.TypeOf(err), core.ErrProtocol)
	}
}

func TestBuildPlayable(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}

	buf, err := BuildPlayable(raw, PlaybackSampleRate, 1)
	if err != nil {
		t.Fatalf("BuildPlayable: %v", err)
	}
	if len(buf.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(buf.Samples), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768.0
		if math.Abs(float64(buf.Samples[i]-want)) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, buf.Samples[i], want)
		}
	}
}

func TestBuildPlayableRejectsOddLength(t *testing.T) {
	if _, err := BuildPlayable([]byte{0x01, 0x02, 0x03}, PlaybackSampleRate, 1); err == nil {
		t.Fatal("expected error for odd-length payload")
	}
}

func TestBufferDuration(t *testing.T) {
	buf := Buffer{Samples: make([]float32, PlaybackSampleRate), SampleRate: PlaybackSampleRate, Channels: 1}
	if got := buf.Seconds(); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("Seconds()=%v, want 1.0", got)
	}
	half := Buffer{Samples: make([]float32, PlaybackSampleRate), SampleRate: PlaybackSampleRate, Channels: 2}
	if got := half.Seconds(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("stereo Seconds()=%v, want 0.5", got)
	}
}

func TestFloat32ToPCM16RoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.999, -1.0}
	raw := Float32ToPCM16(in)
	buf, err := BuildPlayable(raw, CaptureSampleRate, 1)
	if err != nil {
		t.Fatalf("BuildPlayable: %v", err)
	}
	for i := range in {
		if math.Abs(float64(buf.Samples[i]-in[i])) > 1.0/32768.0 {
			t.Fatalf("sample %d = %v, want ~%v", i, buf.Samples[i], in[i])
		}
	}
}

func TestFloat32ToPCM16Clamps(t *testing.T) {
	raw := Float32ToPCM16([]float32{2.0, -2.0})
	if got := int16(binary.LittleEndian.Uint16(raw[0:])); got != 32767 {
		t.Fatalf("positive overflow = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(raw[2:])); got != -32768 {
		t.Fatalf("negative overflow = %d, want -32768", got)
	}
}

func TestPCMToWAVHeader(t *testing.T) {
	pcm := bytes.Repeat([]byte{0x01, 0x02}, 100)
	wav := PCMToWAV(pcm, 24000, 16, 1)
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length=%d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 24000 {
		t.Fatalf("sample rate=%d, want 24000", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Fatalf("data size=%d, want %d", size, len(pcm))
	}
}
