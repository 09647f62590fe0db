// Package capture streams microphone audio and camera frames into a live
// session. Audio flows continuously; frames flow at a fixed rate with at
// most one frame in flight, dropping ticks rather than queueing them.
package capture

import (
	"github.com/gordonklaus/portaudio"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/core"
)

// micBlockFrames is the capture block size in samples. At 16kHz one block
// is 256ms of speech, small enough to keep the model's transcription live.
const micBlockFrames = 4096

// BlockSource yields fixed-size blocks of mono float32 samples.
type BlockSource interface {
	NextBlock() ([]float32, error)
	Close() error
}

// Mic is a PortAudio-backed BlockSource reading the default input device.
type Mic struct {
	stream *portaudio.Stream
	buf    []float32
}

var _ BlockSource = (*Mic)(nil)

// OpenMic opens the default input device for mono capture.
func OpenMic() (*Mic, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, core.NewDeviceError("initialize audio capture", err)
	}

	m := &Mic{buf: make([]float32, micBlockFrames)}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(audio.CaptureSampleRate), micBlockFrames, m.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, core.NewDeviceError("open input stream", err)
	}
	m.stream = stream
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, core.NewDeviceError("start input stream", err)
	}
	return m, nil
}

// NextBlock blocks until a full capture block is available and returns a
// copy the caller owns.
func (m *Mic) NextBlock() ([]float32, error) {
	if err := m.stream.Read(); err != nil {
		return nil, core.NewDeviceError("read input block", err)
	}
	block := make([]float32, len(m.buf))
	copy(block, m.buf)
	return block, nil
}

// Close stops capture and releases the device.
func (m *Mic) Close() error {
	var err error
	if m.stream != nil {
		_ = m.stream.Stop()
		err = m.stream.Close()
		m.stream = nil
	}
	_ = portaudio.Terminate()
	return err
}
