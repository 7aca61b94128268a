package video

import (
	"errors"
	"image"
)

var (
	// ErrSourceUnavailable indicates the path cannot be opened as a decodable
	// video.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidSource indicates the source opened but reports metadata that
	// playback cannot use, such as a zero frame rate or frame count.
	ErrInvalidSource = errors.New("invalid source")
	// ErrDecodeFailure indicates a frame could not be decoded.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrEndOfStream indicates there are no more frames to read.
	ErrEndOfStream = errors.New("end of stream")
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)

// DefaultFrameRate is the frame rate assigned to frame directories when none
// is configured.
const DefaultFrameRate = 24

// Source is an opened, seekable producer of decoded frames.
type Source interface {
	// FrameCount returns the total number of frames in the source.
	FrameCount() int
	// FrameRate returns the source frame rate in whole frames per second.
	FrameRate() int
	// Size returns the width and height shared by every frame.
	Size() image.Point
	// ReadNextFrame returns a newly allocated frame and advances the position.
	// It returns [ErrEndOfStream] when no frames remain.
	ReadNextFrame() (*image.RGBA, error)
	// Seek positions the source so the next read returns frame.
	Seek(frame int) error
	// Position returns the index of the frame the next read will return.
	Position() int
	// Close releases decoder resources.
	Close() error
}

// Option configures [Open].
type Option func(*options)

type options struct {
	ffmpeg    string
	ffprobe   string
	frameRate int
}

func newOptions(opts []Option) *options {
	o := &options{
		ffmpeg:    "ffmpeg",
		ffprobe:   "ffprobe",
		frameRate: DefaultFrameRate,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithFrameRate sets the frame rate used for frame directories, which carry
// no timing of their own. It has no effect on video files.
func WithFrameRate(fps int) Option {
	return func(o *options) {
		o.frameRate = fps
	}
}

// WithFFmpeg overrides the ffmpeg executable name or path.
func WithFFmpeg(path string) Option {
	return func(o *options) {
		o.ffmpeg = path
	}
}

// WithFFprobe overrides the ffprobe executable name or path.
func WithFFprobe(path string) Option {
	return func(o *options) {
		o.ffprobe = path
	}
}
