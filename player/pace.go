package player

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Pacing names a [Pacer] implementation on the command line.
type Pacing string

const (
	// PacingSleep selects [SleepPacer].
	PacingSleep Pacing = "sleep"
	// PacingSpin selects [SpinPacer].
	PacingSpin Pacing = "spin"
)

var (
	// ErrUnknownPacing indicates an unrecognized pacing name.
	ErrUnknownPacing = errors.New("unknown pacing")

	allPacings = []Pacing{PacingSleep, PacingSpin}
)

// Pacer blocks until a deadline.
type Pacer interface {
	// Wait returns once deadline has passed, or early with ctx's error.
	Wait(ctx context.Context, deadline time.Time) error
}

// ParsePacing returns the [Pacer] for a case-insensitive pacing name.
func ParsePacing(s string) (Pacer, error) {
	switch Pacing(strings.ToLower(s)) {
	case PacingSleep:
		return SleepPacer{}, nil
	case PacingSpin:
		return SpinPacer{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPacing, s)
}

// GetAllPacingStrings returns every pacing name.
func GetAllPacingStrings() []string {
	out := make([]string, 0, len(allPacings))
	for _, p := range allPacings {
		out = append(out, string(p))
	}

	return out
}

// SleepPacer waits on a timer, yielding the CPU until the deadline.
type SleepPacer struct {
	// Now reports the current time. Nil uses [time.Now].
	Now func() time.Time
}

// Wait implements [Pacer].
func (p SleepPacer) Wait(ctx context.Context, deadline time.Time) error {
	d := deadline.Sub(now(p.Now))
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SpinPacer polls the clock until the deadline. It holds a CPU for the whole
// wait but wakes with less latency than [SleepPacer].
type SpinPacer struct {
	// Now reports the current time. Nil uses [time.Now].
	Now func() time.Time
}

// Wait implements [Pacer].
func (p SpinPacer) Wait(ctx context.Context, deadline time.Time) error {
	for now(p.Now).Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}

		runtime.Gosched()
	}

	return ctx.Err()
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}

	return fn()
}
