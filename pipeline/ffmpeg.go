package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/passeth/neural-visuals-v2/config"
)

// FrameSink consumes rendered frames in order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Encoder opens a video stream at path.
type Encoder interface {
	Open(ctx context.Context, path string, width, height, fps int) (FrameSink, error)
}

// Muxer combines a silent video with an audio track.
type Muxer interface {
	Mux(ctx context.Context, video, audio, out string) error
}

// FFmpeg encodes raw RGBA frames and muxes audio by running the ffmpeg binary.
type FFmpeg struct {
	Binary       string
	Codec        string
	Preset       string
	PixFmt       string
	AudioCodec   string
	AudioBitrate string
}

// FFmpegFrom builds an FFmpeg from the capture config.
func FFmpegFrom(c config.CaptureConfig) *FFmpeg {
	f := &FFmpeg{
		Binary:       c.FFmpeg,
		Codec:        c.Codec,
		Preset:       c.Preset,
		PixFmt:       c.PixFmt,
		AudioCodec:   c.AudioCodec,
		AudioBitrate: c.AudioBitrate,
	}
	if f.Binary == "" {
		f.Binary = "ffmpeg"
	}
	return f
}

// EncodeArgs returns the arguments that read RGBA frames from stdin.
func (f *FFmpeg) EncodeArgs(path string, width, height, fps int) []string {
	return []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		"-an",
		"-c:v", f.Codec,
		"-preset", f.Preset,
		"-pix_fmt", f.PixFmt,
		path,
	}
}

// MuxArgs returns the arguments that copy the video stream and encode the
// audio, stopping at the shorter input.
func (f *FFmpeg) MuxArgs(video, audio, out string) []string {
	return []string{
		"-y", "-loglevel", "error",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", f.AudioCodec,
		"-b:a", f.AudioBitrate,
		"-shortest",
		out,
	}
}

// Open starts an ffmpeg process that encodes frames written to the sink.
func (f *FFmpeg) Open(ctx context.Context, path string, width, height, fps int) (FrameSink, error) {
	cmd := exec.CommandContext(ctx, f.Binary, f.EncodeArgs(path, width, height, fps)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", f.Binary, err)
	}
	return &ffmpegSink{cmd: cmd, stdin: stdin, stderr: stderr, width: width, height: height}, nil
}

// Mux runs ffmpeg to produce out from video and audio.
func (f *FFmpeg) Mux(ctx context.Context, video, audio, out string) error {
	cmd := exec.CommandContext(ctx, f.Binary, f.MuxArgs(video, audio, out)...)
	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w: %s", err, stderr.String())
	}
	return nil
}

type ffmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer

	width, height int
	closed        bool
}

func (s *ffmpegSink) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame is %dx%d, stream is %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	row := 4 * s.width
	if img.Stride == row {
		_, err := s.stdin.Write(img.Pix[:row*s.height])
		return s.wrap(err)
	}
	for y := 0; y < s.height; y++ {
		off := y * img.Stride
		if _, err := s.stdin.Write(img.Pix[off : off+row]); err != nil {
			return s.wrap(err)
		}
	}
	return nil
}

func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode: %w: %s", err, s.stderr.String())
	}
	return nil
}

func (s *ffmpegSink) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("writing frame: %w: %s", err, s.stderr.String())
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}
