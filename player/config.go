package player

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for playback configuration.
type Flags struct {
	Pacing       string
	RotationStep string
}

// Config holds CLI flag values for playback configuration.
//
// Create instances with [NewConfig], register CLI flags with
// [Config.RegisterFlags], then pass [Config.Options] to [New].
type Config struct {
	Flags        Flags
	Pacing       string
	RotationStep int
}

// NewConfig returns a [Config] using the "pacing" and "rotation-step" flag
// names, [PacingSleep], and [DefaultRotationStep].
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Pacing:       "pacing",
			RotationStep: "rotation-step",
		},
		Pacing:       string(PacingSleep),
		RotationStep: DefaultRotationStep,
	}
}

// RegisterFlags adds playback flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Pacing, c.Flags.Pacing, c.Pacing,
		fmt.Sprintf("frame pacing, one of: %s", GetAllPacingStrings()))
	flags.IntVar(&c.RotationStep, c.Flags.RotationStep, c.RotationStep,
		"degrees added to the rotation per space press")
}

// RegisterCompletions registers shell completions for playback flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Pacing,
		cobra.FixedCompletions(GetAllPacingStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Pacing, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.RotationStep, cobra.NoFileCompletions)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.RotationStep, err)
	}

	return nil
}

// Options returns the [Loop] options for the configured values.
func (c *Config) Options() ([]Option, error) {
	pacer, err := ParsePacing(c.Pacing)
	if err != nil {
		return nil, err
	}

	return []Option{
		WithPacer(pacer),
		WithRotationStep(c.RotationStep),
	}, nil
}
