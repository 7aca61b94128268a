package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Decoder is a [Source] backed by an ffmpeg process that writes raw RGBA
// frames at the video's native size to a pipe.
//
// Seeking restarts the process at the timestamp of the requested frame.
//
// Create instances with [Open].
type Decoder struct {
	ctx    context.Context //nolint:containedctx // Parent of every restarted ffmpeg process.
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	cancel context.CancelFunc
	bin    string
	info   Info
	pos    int
}

func openDecoder(ctx context.Context, ffmpeg string, info Info) (*Decoder, error) {
	bin, err := exec.LookPath(ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH: install ffmpeg or use a directory of PNG frames instead",
			ErrSourceUnavailable, ffmpeg)
	}

	d := &Decoder{
		ctx:  ctx,
		bin:  bin,
		info: info,
	}

	err = d.start(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	return d, nil
}

// Info returns the probed metadata of the video.
func (d *Decoder) Info() Info { return d.info }

// FrameCount implements [Source].
func (d *Decoder) FrameCount() int { return d.info.FrameCount }

// FrameRate implements [Source].
func (d *Decoder) FrameRate() int { return d.info.FrameRate }

// Size implements [Source].
func (d *Decoder) Size() image.Point { return image.Pt(d.info.Width, d.info.Height) }

// Position implements [Source].
func (d *Decoder) Position() int { return d.pos }

// ReadNextFrame reads one frame from the pipe. A clean end of the pipe after a
// successful ffmpeg exit is [ErrEndOfStream]; a truncated frame or a failed
// ffmpeg exit is [ErrDecodeFailure].
func (d *Decoder) ReadNextFrame() (*image.RGBA, error) {
	if d.cmd == nil {
		return nil, ErrEndOfStream
	}

	w, h := d.info.Width, d.info.Height
	buf := make([]byte, w*h*4)

	_, err := io.ReadFull(d.stdout, buf)
	if errors.Is(err, io.EOF) {
		waitErr := d.finish()
		if waitErr != nil {
			return nil, fmt.Errorf("%w: frame %d: ffmpeg: %w: %s", ErrDecodeFailure, d.pos, waitErr, d.lastStderr())
		}

		return nil, ErrEndOfStream
	}

	if err != nil {
		d.stop()

		return nil, fmt.Errorf("%w: frame %d: %w: %s", ErrDecodeFailure, d.pos, err, d.lastStderr())
	}

	d.pos++

	return &image.RGBA{
		Pix:    buf,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}

// Seek restarts ffmpeg so the next read returns frame.
func (d *Decoder) Seek(frame int) error {
	if frame < 0 || frame >= d.info.FrameCount {
		return fmt.Errorf("%w: seek to frame %d of %d", ErrInvalidArgument, frame, d.info.FrameCount)
	}

	d.stop()

	err := d.start(frame)
	if err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}

	return nil
}

// Close stops the ffmpeg process. Idempotent.
func (d *Decoder) Close() error {
	d.stop()

	return nil
}

func (d *Decoder) start(frame int) error {
	ctx, cancel := context.WithCancel(d.ctx)

	args := decoderArgs(d.info, frame)

	//nolint:gosec // The path is the user-selected video.
	cmd := exec.CommandContext(ctx, d.bin, args...)

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()

		return fmt.Errorf("creating stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		cancel()

		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	slog.Debug("started decoder",
		slog.String("path", d.info.Path),
		slog.Int("frame", frame),
	)

	d.cmd = cmd
	d.stdout = stdout
	d.stderr = stderr
	d.cancel = cancel
	d.pos = frame

	return nil
}

// decoderArgs returns the ffmpeg arguments that decode info from frame
// onwards. Autorotation is disabled and the output is scaled to the probed
// size, so every frame fills exactly Width*Height*4 bytes.
func decoderArgs(info Info, frame int) []string {
	args := []string{"-v", "error", "-nostdin", "-noautorotate"}
	if frame > 0 {
		offset := float64(frame) / float64(info.FrameRate)
		args = append(args, "-ss", strconv.FormatFloat(offset, 'f', 6, 64))
	}

	return append(args,
		"-i", info.Path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-vf", fmt.Sprintf("scale=%d:%d", info.Width, info.Height),
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"pipe:1",
	)
}

// finish waits for an ffmpeg process whose output is exhausted.
func (d *Decoder) finish() error {
	err := d.cmd.Wait()
	d.cancel()
	d.cmd = nil

	return err
}

// stop cancels the ffmpeg process and waits for it to exit.
func (d *Decoder) stop() {
	if d.cmd == nil {
		return
	}

	d.cancel()
	//nolint:errcheck // Error is expected after context cancellation.
	d.cmd.Wait()

	d.cmd = nil
}

func (d *Decoder) lastStderr() string {
	if d.stderr == nil {
		return ""
	}

	return strings.TrimSpace(d.stderr.String())
}
