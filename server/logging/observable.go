package logging

import (
	"strings"
	"sync"
)

const defaultCapacity = 500

// Observable is an io.Writer that keeps the most recent log lines in a
// ring buffer so the frontend can show backend logs without touching
// the log file. Plugged into the slog MultiWriter at startup.
type Observable struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func NewObservable() *Observable {
	return &Observable{max: defaultCapacity}
}

func (o *Observable) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		o.lines = append(o.lines, line)
	}

	if overflow := len(o.lines) - o.max; overflow > 0 {
		o.lines = o.lines[overflow:]
	}

	return len(p), nil
}

// Lines returns a copy of the buffered log lines, oldest first.
func (o *Observable) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.lines))
	copy(out, o.lines)
	return out
}
