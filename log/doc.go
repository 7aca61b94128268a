// Package log builds [log/slog] handlers from command-line settings.
//
// Three formats are supported: [FormatJSON] and [FormatLogfmt] use the
// standard library handlers, [FormatText] uses [charm.land/log/v2] for
// human-readable output. Levels are [LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug].
//
// [Config] binds both settings to CLI flags:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	logger, err := cfg.NewLogger(os.Stderr)
//	slog.SetDefault(logger)
//
// While a full-screen terminal UI owns the screen, log output cannot go to
// stderr. Write it to a [Publisher] instead and show the lines inside the UI:
//
//	pub := log.NewPublisher()
//	logger, err := cfg.NewLogger(pub)
//
//	sub := pub.Subscribe()
//	for line := range sub.C() {
//	    // Show line in the status bar.
//	}
package log
