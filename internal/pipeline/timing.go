package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// TimingEnv overrides the configured timing path
const TimingEnv = "TBGEN_TIMING_JSONL"

// Stages reported in the timing log. Run and resolve cover the whole
// invocation; the others are recorded once per source file.
const (
	stageRun     = "run"
	stageResolve = "resolve"
	stageExtract = "extract"
	stageLint    = "lint"
	stageRender  = "render"
	stageWrite   = "write"
)

// stageEvent is one JSONL line
type stageEvent struct {
	Stage      string  `json:"stage"`
	File       string  `json:"file,omitempty"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
	OffsetMS   float64 `json:"offset_ms"`
	DurationMS float64 `json:"duration_ms"`
}

// timingLog appends one event per finished stage. A nil log records nothing,
// so callers never need to check whether timing is enabled.
type timingLog struct {
	origin time.Time

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// openTimingLog truncates path and returns a log whose offsets count from
// origin. An empty path disables timing and returns a nil log.
func openTimingLog(path string, origin time.Time) (*timingLog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening timing log: %w", err)
	}
	return &timingLog{origin: origin, f: f, enc: json.NewEncoder(f)}, nil
}

// track starts the clock for stage on file. Calling the returned func with
// the stage's error appends the event.
func (l *timingLog) track(stage, file string) func(error) {
	if l == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		ev := stageEvent{
			Stage:      stage,
			File:       file,
			Status:     "ok",
			OffsetMS:   millis(start.Sub(l.origin)),
			DurationMS: millis(time.Since(start)),
		}
		if err != nil {
			ev.Status = "error"
			ev.Error = err.Error()
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		_ = l.enc.Encode(ev)
	}
}

func (l *timingLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// resolveTimingPath picks the environment, then the flag, then the config file
func resolveTimingPath(opts Options, cfgPath string) string {
	if envPath := os.Getenv(TimingEnv); envPath != "" {
		return envPath
	}
	if opts.TimingPath != "" {
		return opts.TimingPath
	}
	return cfgPath
}
