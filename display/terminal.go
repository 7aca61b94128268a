package display

import (
	"errors"
	"fmt"
	"image"

	tea "charm.land/bubbletea/v2"

	"go.jacobcolvin.com/rotoplay/log"
)

const defaultKeyBuffer = 16

// ErrClosed indicates the display program has exited.
var ErrClosed = errors.New("display closed")

// Terminal is a full-screen frame display and key source.
//
// Create instances with [New], then call [Terminal.Run]. The other methods are
// safe to call from any goroutine, before or during Run.
type Terminal struct {
	prog     *tea.Program
	model    *model
	keys     chan string
	done     chan struct{}
	progOpts []tea.ProgramOption
	keyBuf   int
	width    int
	cols     int
	rows     int
}

// Option configures a [Terminal].
type Option func(*Terminal)

// WithWidth caps the frame width in columns. 0 uses the full window width.
func WithWidth(cols int) Option {
	return func(t *Terminal) {
		t.width = max(cols, 0)
	}
}

// WithSize sets the grid size used until the program reports the window
// size.
func WithSize(cols, rows int) Option {
	return func(t *Terminal) {
		t.cols = cols
		t.rows = rows
	}
}

// WithKeyBuffer sets how many unpolled keys are kept. Values less than 1 are
// clamped to 1.
func WithKeyBuffer(n int) Option {
	return func(t *Terminal) {
		t.keyBuf = max(n, 1)
	}
}

// WithProgramOptions passes extra options to the Bubble Tea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(t *Terminal) {
		t.progOpts = append(t.progOpts, opts...)
	}
}

// New creates a [Terminal].
func New(opts ...Option) *Terminal {
	t := &Terminal{
		keyBuf: defaultKeyBuffer,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.keys = make(chan string, t.keyBuf)
	t.model = newModel(t.keys, t.width, t.cols, t.rows)

	// Interrupts are handled by the caller's signal context.
	progOpts := append([]tea.ProgramOption{tea.WithoutSignalHandler()}, t.progOpts...)
	t.prog = tea.NewProgram(t.model, progOpts...)

	return t
}

// Run runs the program until ctrl+c or [Terminal.Stop]. It returns the error
// passed to Stop.
func (t *Terminal) Run() error {
	defer close(t.done)

	_, err := t.prog.Run()
	if err != nil {
		return fmt.Errorf("running display: %w", err)
	}

	return t.model.err
}

// Done returns a channel that is closed once [Terminal.Run] returns.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Present shows frame. It returns [ErrClosed] once the program has exited.
func (t *Terminal) Present(frame *image.RGBA) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}

	t.prog.Send(frameMsg{frame: frame})

	return nil
}

// PollKey returns the oldest buffered key press without blocking.
func (t *Terminal) PollKey() (string, bool) {
	select {
	case key := <-t.keys:
		return key, true
	default:
		return "", false
	}
}

// Stop ends the program. [Terminal.Run] returns err.
func (t *Terminal) Stop(err error) {
	select {
	case <-t.done:
	default:
		t.prog.Send(stopMsg{err: err})
	}
}

// Follow shows each line from sub in the status bar until sub or the
// program closes.
func (t *Terminal) Follow(sub *log.Subscription) {
	go func() {
		defer sub.Close()

		for {
			select {
			case <-t.done:
				return
			case line, ok := <-sub.C():
				if !ok {
					return
				}

				t.prog.Send(logMsg(line))
			}
		}
	}()
}
