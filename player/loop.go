package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/trace"
	"time"

	"go.jacobcolvin.com/rotoplay/rotate"
	"go.jacobcolvin.com/rotoplay/video"
)

const (
	// KeySpace is the key that advances the rotation angle.
	KeySpace = "space"

	// DefaultRotationStep is the angle added per [KeySpace] press, in degrees.
	DefaultRotationStep = 5
)

// State is everything that carries over between loop iterations.
type State struct {
	// Start is when the current iteration began.
	Start time.Time
	// Angle is the rotation applied to frames, in degrees counter-clockwise.
	// It only grows.
	Angle int
	// Iteration counts completed steps.
	Iteration int
	// Loops counts rewinds to the first frame.
	Loops int
}

// Sink displays frames.
type Sink interface {
	// Present shows frame. The sink owns frame afterwards.
	Present(frame *image.RGBA) error
}

// KeyPoller reports key presses without blocking.
type KeyPoller interface {
	// PollKey returns the oldest unread key, if any.
	PollKey() (string, bool)
}

// Loop plays a [video.Source] into a [Sink].
//
// Create instances with [New].
type Loop struct {
	src      video.Source
	sink     Sink
	keys     KeyPoller
	pacer    Pacer
	now      func() time.Time
	log      *slog.Logger
	rot      rotate.Rotator
	interval time.Duration
	step     int
}

// Option configures a [Loop].
type Option func(*Loop)

// WithPacer sets how the loop waits out each frame interval. The default is
// [SleepPacer].
func WithPacer(p Pacer) Option {
	return func(l *Loop) {
		l.pacer = p
	}
}

// WithClock sets the clock used to stamp [State.Start].
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) {
		l.log = log
	}
}

// WithRotationStep sets the angle added per [KeySpace] press.
func WithRotationStep(deg int) Option {
	return func(l *Loop) {
		l.step = deg
	}
}

// New creates a [Loop]. keys may be nil when there is no keyboard. src must
// report a positive frame rate; [video.Open] guarantees that.
func New(src video.Source, sink Sink, keys KeyPoller, opts ...Option) *Loop {
	l := &Loop{
		src:   src,
		sink:  sink,
		keys:  keys,
		pacer: SleepPacer{},
		now:   time.Now,
		log:   slog.Default(),
		step:  DefaultRotationStep,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.interval = time.Second / time.Duration(max(src.FrameRate(), 1))

	return l
}

// Interval returns the minimum time between two presented frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run steps the loop until ctx is cancelled, which returns nil, or a step
// fails, which returns its error.
func (l *Loop) Run(ctx context.Context) error {
	var s State

	l.log.DebugContext(ctx, "playback started",
		slog.Int("frames", l.src.FrameCount()),
		slog.Duration("interval", l.interval),
	)

	for {
		err := l.Step(ctx, &s)
		if err != nil && !errors.Is(err, ctx.Err()) {
			return err
		}

		if ctx.Err() != nil {
			l.log.DebugContext(ctx, "playback stopped",
				slog.Int("iterations", s.Iteration),
				slog.Int("loops", s.Loops),
				slog.Int("angle", s.Angle),
			)

			return nil
		}
	}
}

// Step runs one iteration and advances s.
func (l *Loop) Step(ctx context.Context, s *State) error {
	ctx, task := trace.NewTask(ctx, "frame")
	defer task.End()

	s.Start = l.now()

	frame, err := l.read(ctx, s)
	if err != nil {
		return err
	}

	if l.src.Position() == l.src.FrameCount() {
		err := l.rewind(ctx, s)
		if err != nil {
			return err
		}
	}

	trace.WithRegion(ctx, "rotate", func() {
		l.rot.Apply(frame, s.Angle)
	})

	if l.keys != nil {
		key, ok := l.keys.PollKey()
		if ok && key == KeySpace {
			s.Angle += l.step
			l.log.DebugContext(ctx, "rotated", slog.Int("angle", s.Angle))
		}
	}

	region := trace.StartRegion(ctx, "wait")
	err = l.pacer.Wait(ctx, s.Start.Add(l.interval))
	region.End()

	if err != nil {
		return fmt.Errorf("waiting for frame interval: %w", err)
	}

	err = l.sink.Present(frame)
	if err != nil {
		return fmt.Errorf("presenting frame: %w", err)
	}

	s.Iteration++

	return nil
}

// read returns the next frame. A stream that ends before its reported frame
// count is rewound once.
func (l *Loop) read(ctx context.Context, s *State) (*image.RGBA, error) {
	defer trace.StartRegion(ctx, "decode").End()

	frame, err := l.src.ReadNextFrame()
	if !errors.Is(err, video.ErrEndOfStream) {
		return frame, err
	}

	l.log.WarnContext(ctx, "stream ended before reported frame count",
		slog.Int("position", l.src.Position()),
		slog.Int("frames", l.src.FrameCount()),
	)

	err = l.rewind(ctx, s)
	if err != nil {
		return nil, err
	}

	frame, err = l.src.ReadNextFrame()
	if errors.Is(err, video.ErrEndOfStream) {
		return nil, fmt.Errorf("%w: no frames after rewind: %w", video.ErrDecodeFailure, err)
	}

	return frame, err
}

func (l *Loop) rewind(ctx context.Context, s *State) error {
	err := l.src.Seek(0)
	if err != nil {
		return fmt.Errorf("rewinding: %w", err)
	}

	s.Loops++
	l.log.DebugContext(ctx, "rewound", slog.Int("loops", s.Loops))

	return nil
}
