package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.jacobcolvin.com/rotoplay/display"
	"go.jacobcolvin.com/rotoplay/log"
	"go.jacobcolvin.com/rotoplay/player"
	"go.jacobcolvin.com/rotoplay/video"
)

const (
	prompt = "Enter path to video file: "

	// Grid used when the terminal size cannot be read.
	fallbackCols = 80
	fallbackRows = 24
)

type playOptions struct {
	log    *log.Config
	player *player.Config
	fps    int
	width  int
}

func newPlayOptions(logCfg *log.Config) *playOptions {
	return &playOptions{
		log:    logCfg,
		player: player.NewConfig(),
		fps:    video.DefaultFrameRate,
	}
}

func (o *playOptions) registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&o.fps, "fps", o.fps, "frame rate for frame directories")
	flags.IntVarP(&o.width, "width", "w", 0, "render width in columns (0 = terminal width)")
	o.player.RegisterFlags(flags)

	err := errors.Join(
		cmd.RegisterFlagCompletionFunc("fps", cobra.NoFileCompletions),
		cmd.RegisterFlagCompletionFunc("width", cobra.NoFileCompletions),
		o.player.RegisterCompletions(cmd),
	)
	if err != nil {
		slog.Warn("registering completions", slog.Any("err", err))
	}
}

// pathArg returns the single positional argument, or asks for a path when
// there is none.
func pathArg(args []string, s streams) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	return promptPath(s.in, s.out)
}

// promptPath asks for a path on w and reads one line from r.
func promptPath(r io.Reader, w io.Writer) (string, error) {
	_, err := io.WriteString(w, prompt)
	if err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		err := sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return "", fmt.Errorf("%w: reading path: %w", video.ErrSourceUnavailable, err)
	}

	return strings.TrimSpace(sc.Text()), nil
}

// run plays path until ctx is cancelled, the display exits, or playback
// fails.
func (o *playOptions) run(ctx context.Context, path string) error {
	loopOpts, err := o.player.Options()
	if err != nil {
		return err
	}

	src, err := video.Open(ctx, path, video.WithFrameRate(o.fps))
	if err != nil {
		return err
	}

	defer func() {
		err := src.Close()
		if err != nil {
			slog.Warn("closing source", slog.Any("err", err))
		}
	}()

	// The display owns the screen, so logs move to its status bar.
	pub := log.NewPublisher()
	defer pub.Close() //nolint:errcheck // Close never fails.

	logger, err := o.log.NewLogger(pub)
	if err != nil {
		return err
	}

	stderrLogger := slog.Default()
	slog.SetDefault(logger)

	defer slog.SetDefault(stderrLogger)

	cols, rows := terminalSize()
	screen := display.New(display.WithWidth(o.width), display.WithSize(cols, rows))
	screen.Follow(pub.Subscribe())

	loop := player.New(src, screen, screen, append(loopOpts, player.WithLogger(logger))...)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		screen.Stop(loop.Run(ctx))
	}()

	err = screen.Run()

	cancel()
	<-done

	if err != nil {
		return fmt.Errorf("playing %s: %w", path, err)
	}

	return nil
}

func terminalSize() (int, int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // File descriptors fit in int.
	if err != nil {
		slog.Debug("reading terminal size", slog.Any("err", err))

		return fallbackCols, fallbackRows
	}

	return cols, rows
}
