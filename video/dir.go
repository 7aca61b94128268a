package video

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// OpenDir loads every PNG image in dir, sorted by file name, as a [Frames]
// source playing at rate frames per second.
func OpenDir(dir string, rate int) (*Frames, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory: %w", ErrSourceUnavailable, err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no PNG files found in %s", ErrSourceUnavailable, dir)
	}

	slices.Sort(names)

	frames := make([]image.Image, 0, len(names))

	for _, name := range names {
		img, err := decodePNG(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrSourceUnavailable, name, err)
		}

		frames = append(frames, img)
	}

	slog.Debug("loaded frame directory",
		slog.String("dir", dir),
		slog.Int("frames", len(frames)),
	)

	f, err := NewFrames(frames, rate)
	if err != nil {
		return nil, err
	}

	f.info.Path = dir
	f.info.Container = "png"
	f.info.Codec = "png"

	return f, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // Frames come from the user-selected directory.
	if err != nil {
		return nil, err
	}

	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			slog.Warn("closing frame", slog.String("path", path), slog.Any("err", closeErr))
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	return img, nil
}
