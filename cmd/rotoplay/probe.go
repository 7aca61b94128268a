package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/rotoplay/video"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

var (
	// ErrUnknownOutput indicates an unsupported --output value.
	ErrUnknownOutput = errors.New("unknown output format")

	outputs = []string{outputYAML, outputJSON}
)

type probeOptions struct {
	output string
	fps    int
	schema bool
}

func newProbeCmd(s streams) *cobra.Command {
	opts := &probeOptions{
		output: outputYAML,
		fps:    video.DefaultFrameRate,
	}

	cmd := &cobra.Command{
		Use:   "probe [flags] <video_file|frame_directory>",
		Short: "Print the metadata playback would use",
		Long: `probe prints the frame count, frame rate, and frame size rotoplay reads from a
video file or frame directory, and fails the same way playback would when the
source is unusable. With --schema it prints the JSON Schema of that document
instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.schema {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(outputs, opts.output) {
				return fmt.Errorf("%w: %q", ErrUnknownOutput, opts.output)
			}

			if opts.schema {
				return writeSchema(s.out)
			}

			info, err := video.Describe(cmd.Context(), args[0], video.WithFrameRate(opts.fps))
			if err != nil {
				return err
			}

			err = writeInfo(s.out, info, opts.output)
			if err != nil {
				return err
			}

			return info.Validate()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", opts.output,
		fmt.Sprintf("output format, one of: %s", outputs))
	flags.BoolVar(&opts.schema, "schema", false, "print the JSON Schema of the output document")
	flags.IntVar(&opts.fps, "fps", opts.fps, "frame rate for frame directories")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(outputs, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintf(s.err, "register completions: %v\n", err)
	}

	return cmd
}

func writeInfo(w io.Writer, info video.Info, output string) error {
	var (
		out []byte
		err error
	)

	switch output {
	case outputJSON:
		out, err = json.MarshalIndent(info, "", "  ")
		out = append(out, '\n')
	default:
		out, err = yaml.Marshal(info)
	}

	if err != nil {
		return fmt.Errorf("encoding %s: %w", output, err)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

func writeSchema(w io.Writer) error {
	schema, err := jsonschema.For[video.Info](nil)
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}

	schema.Schema = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "rotoplay probe"
	schema.Description = "Metadata of a video source as used for playback."

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", out)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}
