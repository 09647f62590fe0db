package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/aura-assist/aura/pkg/core"
)

// FrameMimeType is the MIME type of frames produced by Camera.
const FrameMimeType = "image/jpeg"

const (
	frameWidth  = 640
	frameHeight = 360
)

// FrameSource yields encoded still frames.
type FrameSource interface {
	NextFrame() ([]byte, error)
	Close() error
}

// Camera is an ffmpeg-backed FrameSource. A child process grabs the
// capture device, downscales to a model-friendly size, and writes an MJPEG
// stream that NextFrame splits on JPEG boundaries.
type Camera struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

var _ FrameSource = (*Camera)(nil)

// CameraOptions configures the grab process.
type CameraOptions struct {
	// Device is the capture device path, e.g. /dev/video0.
	Device string

	// InputFormat is the ffmpeg input demuxer (default v4l2).
	InputFormat string

	// FrameRate is the grab rate in frames per second (default 1).
	FrameRate float64

	// Quality maps to ffmpeg's -q:v scale, 2 (best) to 31 (worst).
	// Zero selects a size-conscious default.
	Quality int
}

// OpenCamera starts the grab process.
func OpenCamera(opts CameraOptions) (*Camera, error) {
	if opts.Device == "" {
		opts.Device = "/dev/video0"
	}
	if opts.InputFormat == "" {
		opts.InputFormat = "v4l2"
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 1
	}
	if opts.Quality <= 0 {
		opts.Quality = 16
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", opts.InputFormat,
		"-i", opts.Device,
		"-vf", fmt.Sprintf("scale=%d:%d", frameWidth, frameHeight),
		"-r", strconv.FormatFloat(opts.FrameRate, 'f', -1, 64),
		"-q:v", strconv.Itoa(opts.Quality),
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, core.NewDeviceError("open camera pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, core.NewDeviceError("start camera process", err)
	}
	return &Camera{
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReaderSize(stdout, 1<<16),
	}, nil
}

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// NextFrame blocks until the grab process emits a complete JPEG frame.
func (c *Camera) NextFrame() ([]byte, error) {
	// Resynchronize on the start-of-image marker.
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return nil, core.NewDeviceError("read camera stream", err)
		}
		if b != jpegSOI[0] {
			continue
		}
		next, err := c.reader.ReadByte()
		if err != nil {
			return nil, core.NewDeviceError("read camera stream", err)
		}
		if next == jpegSOI[1] {
			break
		}
	}

	frame := bytes.NewBuffer(nil)
	frame.Write(jpegSOI)
	prev := byte(0)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return nil, core.NewDeviceError("read camera stream", err)
		}
		frame.WriteByte(b)
		if prev == jpegEOI[0] && b == jpegEOI[1] {
			return frame.Bytes(), nil
		}
		prev = b
	}
}

// Close terminates the grab process. Idempotent.
func (c *Camera) Close() error {
	c.closeOnce.Do(func() {
		_ = c.stdout.Close()
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
		c.closeErr = c.cmd.Wait()
	})
	return c.closeErr
}
