package recorder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

const (
	readBufferSize  = 32 * 1024
	stopGracePeriod = 3 * time.Second
)

// FFmpegSource captures mono 16 bit PCM from a local input device through
// an ffmpeg child process.
type FFmpegSource struct {
	cnf    config.CaptureInfo
	logger *logrus.Entry
}

func NewFFmpegSource(cnf *config.CaptureInfo, logger *logrus.Logger) *FFmpegSource {
	c := *cnf
	if c.InputFormat == "" || c.InputDevice == "" {
		format, device := defaultInput()
		if c.InputFormat == "" {
			c.InputFormat = format
		}
		if c.InputDevice == "" {
			c.InputDevice = device
		}
	}
	return &FFmpegSource{
		cnf:    c,
		logger: logger.WithField("source", "ffmpeg"),
	}
}

func defaultInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// Available reports whether the ffmpeg binary can be found.
func (s *FFmpegSource) Available() error {
	if _, err := exec.LookPath(s.cnf.FFmpegPath); err != nil {
		return fmt.Errorf("%s not found: %w", s.cnf.FFmpegPath, err)
	}
	return nil
}

func (s *FFmpegSource) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", s.cnf.InputFormat, "-i", s.cnf.InputDevice}
	args = append(args, s.cnf.ExtraArgs...)
	return append(args,
		"-ac", "1",
		"-ar", strconv.Itoa(s.cnf.SampleRate),
		"-acodec", "pcm_s16le",
		"-f", "s16le",
		"pipe:1",
	)
}

func (s *FFmpegSource) Open(sink func([]byte)) (io.Closer, error) {
	if err := s.Available(); err != nil {
		return nil, err
	}

	cmd := exec.Command(s.cnf.FFmpegPath, s.args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"format": s.cnf.InputFormat,
		"device": s.cnf.InputDevice,
		"pid":    cmd.Process.Pid,
	}).Infoln("audio capture started")

	c := &ffmpegCapture{cmd: cmd, stderr: stderr, done: make(chan struct{}), logger: s.logger}
	go c.read(stdout, sink)
	return c, nil
}

func (s *FFmpegSource) Encode(raw []byte) ([]byte, string) {
	return wavEncode(raw, s.cnf.SampleRate, 1, 16), "audio/wav"
}

type ffmpegCapture struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	done   chan struct{}
	once   sync.Once
	err    error
	logger *logrus.Entry
}

func (c *ffmpegCapture) read(r io.Reader, sink func([]byte)) {
	defer close(c.done)
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b := make([]byte, n)
			copy(b, buf[:n])
			sink(b)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				c.logger.WithError(err).Warnln("audio capture read failed")
			}
			return
		}
	}
}

func (c *ffmpegCapture) Close() error {
	c.once.Do(func() {
		// ffmpeg finishes cleanly on interrupt, kill only if it hangs
		_ = c.cmd.Process.Signal(os.Interrupt)
		select {
		case <-c.done:
		case <-time.After(stopGracePeriod):
			_ = c.cmd.Process.Kill()
			<-c.done
		}
		if err := c.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				c.err = err
			} else if c.stderr.Len() > 0 {
				c.logger.WithField("stderr", c.stderr.String()).Debugln("ffmpeg exited")
			}
		}
	})
	return c.err
}
