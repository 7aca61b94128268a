package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Describe returns the metadata [Open] would play path with. Directories are
// loaded to count their frames; files are probed with [Probe].
func Describe(ctx context.Context, path string, opts ...Option) (Info, error) {
	o := newOptions(opts)

	fi, err := stat(path)
	if err != nil {
		return Info{}, err
	}

	if fi.IsDir() {
		f, err := OpenDir(path, o.frameRate)
		if err != nil {
			return Info{}, err
		}

		return f.Info(), nil
	}

	info, err := probe(ctx, path, o)
	if err != nil {
		return Info{}, unavailable(err)
	}

	return info, nil
}

// Open acquires a [Source] for path.
//
// A directory is loaded as PNG frames playing at the rate set with
// [WithFrameRate]. Any other path is probed with [Probe] and decoded by
// ffmpeg. Open returns an error wrapping [ErrSourceUnavailable] when path
// cannot be opened as video and [ErrInvalidSource] when its metadata cannot
// drive playback.
func Open(ctx context.Context, path string, opts ...Option) (Source, error) {
	o := newOptions(opts)

	fi, err := stat(path)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		f, err := OpenDir(path, o.frameRate)
		if err != nil {
			return nil, err
		}

		return f, nil
	}

	info, err := probe(ctx, path, o)
	if err != nil {
		return nil, unavailable(err)
	}

	err = info.Validate()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "opened video",
		slog.String("path", info.Path),
		slog.String("codec", info.Codec),
		slog.Int("frames", info.FrameCount),
		slog.Int("fps", info.FrameRate),
		slog.Int("width", info.Width),
		slog.Int("height", info.Height),
	)

	// The decoder outlives cancellation of ctx until Close, so an interrupt
	// stops playback instead of failing the read in flight.
	return openDecoder(context.WithoutCancel(ctx), o.ffmpeg, info)
}

func stat(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %w: empty path", ErrSourceUnavailable, ErrInvalidArgument)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	return fi, nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrSourceUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}
