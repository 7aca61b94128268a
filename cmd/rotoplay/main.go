// Command rotoplay plays a video in the terminal and rotates it on demand.
//
// The video loops until the process is interrupted. Each press of the space
// bar turns the picture a further five degrees counter-clockwise about its
// center. Video files are decoded with ffmpeg; a directory of PNG frames
// plays without it.
//
// # Usage
//
//	rotoplay [flags] [video_file|frame_directory]
//	rotoplay probe [--output yaml|json] [--schema] <video_file|frame_directory>
//	rotoplay version
//
// Without an argument rotoplay asks for the path on standard input.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/rotoplay/log"
	"go.jacobcolvin.com/rotoplay/profile"
	"go.jacobcolvin.com/rotoplay/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := execute(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// streams are the standard streams a command runs against.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// execute runs the command line args and stops profiling afterwards.
func execute(ctx context.Context, args []string, s streams) error {
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()
	prof := profCfg.NewProfiler()

	root := newRootCmd(s, logCfg)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		logger, err := logCfg.NewLogger(s.err)
		if err != nil {
			return err
		}

		slog.SetDefault(logger)

		return prof.Start()
	}

	logCfg.RegisterFlags(root.PersistentFlags())
	profCfg.RegisterFlags(root.PersistentFlags())

	err := errors.Join(logCfg.RegisterCompletions(root), profCfg.RegisterCompletions(root))
	if err != nil {
		fmt.Fprintf(s.err, "register completions: %v\n", err)
	}

	root.AddCommand(newProbeCmd(s), newVersionCmd(s))

	err = root.ExecuteContext(ctx)

	return errors.Join(err, prof.Stop())
}

func newRootCmd(s streams, logCfg *log.Config) *cobra.Command {
	opts := newPlayOptions(logCfg)

	cmd := &cobra.Command{
		Use:   "rotoplay [flags] [video_file|frame_directory]",
		Short: "Play a video in the terminal, rotating it with the space bar",
		Long: `rotoplay plays a video file, or a directory of PNG frames, full screen in the
terminal at its native frame rate, looping until interrupted. Each press of
the space bar rotates the picture a further few degrees counter-clockwise.
Press ctrl+c to quit.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args, s)
			if err != nil {
				return err
			}

			return opts.run(cmd.Context(), path)
		},
	}

	opts.registerFlags(cmd)

	return cmd
}
