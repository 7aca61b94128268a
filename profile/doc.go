// Package profile writes runtime profiles and execution traces for a CLI
// run.
//
// The CPU profile and the execution trace stream for the whole run. Heap,
// allocs, goroutine, block, and mutex profiles are snapshots written when the
// run ends. Every output is off until its flag names a file:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	p := cfg.NewProfiler()
//
//	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
//	    return p.Start()
//	}
//
//	err := rootCmd.ExecuteContext(ctx)
//	err = errors.Join(err, p.Stop())
//
// Playback marks each frame step with trace regions, so a trace shows where
// the frame time went. View it with "go tool trace".
package profile
