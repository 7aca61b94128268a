package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPU       string
	Trace     string
	Heap      string
	Allocs    string
	Goroutine string
	Block     string
	Mutex     string

	MemRate       string
	BlockRate     string
	MutexFraction string
}

// Config holds profiling output paths and sampling rates. A zero Config has
// everything disabled and leaves the runtime's rates untouched.
//
// Create instances with [NewConfig], register CLI flags with
// [Config.RegisterFlags], then call [Config.NewProfiler].
type Config struct {
	Flags Flags

	// Output paths; empty disables the output.
	CPU       string
	Trace     string
	Heap      string
	Allocs    string
	Goroutine string
	Block     string
	Mutex     string

	MemRate       int
	BlockRate     int
	MutexFraction int
}

// NewConfig returns a [Config] with the default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			CPU:           "cpu-profile",
			Trace:         "trace",
			Heap:          "heap-profile",
			Allocs:        "allocs-profile",
			Goroutine:     "goroutine-profile",
			Block:         "block-profile",
			Mutex:         "mutex-profile",
			MemRate:       "mem-profile-rate",
			BlockRate:     "block-profile-rate",
			MutexFraction: "mutex-profile-fraction",
		},
	}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPU, c.Flags.CPU, "", "write CPU profile to file")
	flags.StringVar(&c.Trace, c.Flags.Trace, "", "write execution trace to file")
	flags.StringVar(&c.Heap, c.Flags.Heap, "", "write heap profile to file on exit")
	flags.StringVar(&c.Allocs, c.Flags.Allocs, "", "write allocs profile to file on exit")
	flags.StringVar(&c.Goroutine, c.Flags.Goroutine, "", "write goroutine profile to file on exit")
	flags.StringVar(&c.Block, c.Flags.Block, "", "write block profile to file on exit")
	flags.StringVar(&c.Mutex, c.Flags.Mutex, "", "write mutex profile to file on exit")

	flags.IntVar(&c.MemRate, c.Flags.MemRate, 512*1024, "memory profile rate (bytes per sample)")
	flags.IntVar(&c.BlockRate, c.Flags.BlockRate, 1, "block profile rate (nanoseconds)")
	flags.IntVar(&c.MutexFraction, c.Flags.MutexFraction, 1, "mutex profile fraction (1/N sampling)")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
// Path flags complete file names, rate flags complete nothing.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	for _, name := range []string{c.Flags.MemRate, c.Flags.BlockRate, c.Flags.MutexFraction} {
		err := cmd.RegisterFlagCompletionFunc(name, cobra.NoFileCompletions)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// NewProfiler creates a [Profiler] from a copy of c.
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{cfg: *c}
}
