package profile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Profiler runs one profiling session.
//
// [Profiler.Start] begins the CPU profile and execution trace, [Profiler.Stop]
// ends them and writes the snapshot profiles.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cpuFile   *os.File
	traceFile *os.File
	cfg       Config
}

// Start applies the configured sampling rates and opens the streaming
// outputs. On error nothing is left running.
func (p *Profiler) Start() error {
	if p.cfg.MemRate > 0 {
		runtime.MemProfileRate = p.cfg.MemRate
	}

	runtime.SetBlockProfileRate(p.cfg.BlockRate)
	runtime.SetMutexProfileFraction(p.cfg.MutexFraction)

	if p.cfg.CPU != "" {
		f, err := start(p.cfg.CPU, pprof.StartCPUProfile)
		if err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}

		p.cpuFile = f
	}

	if p.cfg.Trace != "" {
		f, err := start(p.cfg.Trace, trace.Start)
		if err != nil {
			p.stopCPU() //nolint:errcheck // Reporting the trace failure instead.

			return fmt.Errorf("trace: %w", err)
		}

		p.traceFile = f
	}

	return nil
}

// Stop ends the streaming outputs and writes every enabled snapshot profile.
// All outputs are attempted; failures are joined.
func (p *Profiler) Stop() error {
	var errs []error

	if p.traceFile != nil {
		trace.Stop()

		err := p.traceFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("trace: %w", err))
		}

		p.traceFile = nil
	}

	err := p.stopCPU()
	if err != nil {
		errs = append(errs, fmt.Errorf("cpu profile: %w", err))
	}

	for _, s := range p.snapshots() {
		if s.path == "" {
			continue
		}

		err := writeSnapshot(s.name, s.path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s profile: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}

func (p *Profiler) stopCPU() error {
	if p.cpuFile == nil {
		return nil
	}

	pprof.StopCPUProfile()

	err := p.cpuFile.Close()
	p.cpuFile = nil

	return err
}

type snapshot struct {
	name string
	path string
}

func (p *Profiler) snapshots() []snapshot {
	return []snapshot{
		{"heap", p.cfg.Heap},
		{"allocs", p.cfg.Allocs},
		{"goroutine", p.cfg.Goroutine},
		{"block", p.cfg.Block},
		{"mutex", p.cfg.Mutex},
	}
}

// start creates path and hands it to begin, closing it again if begin fails.
func start(path string, begin func(io.Writer) error) (*os.File, error) {
	f, err := os.Create(path) //nolint:gosec // Path comes from a CLI flag.
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	err = begin(f)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	slog.Debug("profiling started", slog.String("path", path))

	return f, nil
}

func writeSnapshot(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile %q", name)
	}

	f, err := os.Create(path) //nolint:gosec // Path comes from a CLI flag.
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.Join(err, f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	slog.Debug("wrote profile", slog.String("profile", name), slog.String("path", path))

	return nil
}
