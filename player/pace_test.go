package player_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/rotoplay/player"
)

func TestParsePacing(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  player.Pacer
		err   error
	}{
		"sleep":            {input: "sleep", want: player.SleepPacer{}},
		"spin":             {input: "spin", want: player.SpinPacer{}},
		"case insensitive": {input: "SPIN", want: player.SpinPacer{}},
		"unknown":          {input: "busy", err: player.ErrUnknownPacing},
		"empty":            {input: "", err: player.ErrUnknownPacing},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := player.ParsePacing(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tc.want, got)
		})
	}
}

func TestPacerWait(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pacer player.Pacer
	}{
		"sleep": {pacer: player.SleepPacer{}},
		"spin":  {pacer: player.SpinPacer{}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			t.Run("waits until deadline", func(t *testing.T) {
				t.Parallel()

				deadline := time.Now().Add(20 * time.Millisecond)
				require.NoError(t, tc.pacer.Wait(t.Context(), deadline))
				assert.False(t, time.Now().Before(deadline))
			})

			t.Run("past deadline returns immediately", func(t *testing.T) {
				t.Parallel()

				start := time.Now()
				require.NoError(t, tc.pacer.Wait(t.Context(), start.Add(-time.Second)))
				assert.Less(t, time.Since(start), 100*time.Millisecond)
			})

			t.Run("cancelled", func(t *testing.T) {
				t.Parallel()

				ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
				defer cancel()

				start := time.Now()
				err := tc.pacer.Wait(ctx, start.Add(time.Hour))
				require.ErrorIs(t, err, context.DeadlineExceeded)
				assert.Less(t, time.Since(start), time.Minute)
			})
		})
	}
}

func TestPacerClock(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++

		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	p := player.SpinPacer{Now: clock}
	require.NoError(t, p.Wait(t.Context(), base.Add(5*time.Millisecond)))
	assert.Equal(t, 5, calls)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args    []string
		wantErr error
	}{
		"defaults":          {},
		"spin":              {args: []string{"--pacing=spin", "--rotation-step=90"}},
		"unknown pacing":    {args: []string{"--pacing=busy"}, wantErr: player.ErrUnknownPacing},
		"negative rotation": {args: []string{"--rotation-step=-5"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := player.NewConfig()

			cmd := &cobra.Command{Use: "test"}
			cfg.RegisterFlags(cmd.Flags())
			require.NoError(t, cfg.RegisterCompletions(cmd))
			require.NoError(t, cmd.Flags().Parse(tc.args))

			opts, err := cfg.Options()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, opts, 2)
		})
	}

	t.Run("pacing completions", func(t *testing.T) {
		t.Parallel()

		cfg := player.NewConfig()

		cmd := &cobra.Command{Use: "test"}
		cfg.RegisterFlags(cmd.Flags())
		require.NoError(t, cfg.RegisterCompletions(cmd))

		fn, ok := cmd.GetFlagCompletionFunc("pacing")
		require.True(t, ok)

		values, directive := fn(cmd, nil, "")
		assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
		assert.Equal(t, []string{"sleep", "spin"}, values)
	})
}
