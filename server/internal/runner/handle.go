package runner

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Line is one relayed output line. Text is always the verbatim line the
// downloader produced; the severity is a passive tag for the frontend.
type Line struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Snapshot is the read-only view of a run handed to the API layer.
type Snapshot struct {
	Id       string   `json:"id"`
	Params   []string `json:"params"`
	Status   Status   `json:"status"`
	Progress Progress `json:"progress"`
	ExitCode *int     `json:"exit_code,omitempty"`
}

// RunHandle represents one in-flight downloader process. The supervising
// goroutine is its only writer; consumers poll lines and the completion
// state from the serving goroutines. Handles are single-use.
type RunHandle struct {
	id     string
	params []string

	proc *os.Process
	pub  Publisher

	progress *Tracker
	done     chan struct{}

	mu        sync.Mutex
	status    Status
	queue     []Line
	exitCode  int
	hasExit   bool
	cancelled bool
}

func (h *RunHandle) GetId() string    { return h.id }
func (h *RunHandle) Params() []string { return h.params }

func (h *RunHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// IsComplete reports whether the process has exited and every output
// line has been queued.
func (h *RunHandle) IsComplete() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code once the run is complete.
func (h *RunHandle) ExitCode() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.hasExit
}

// PollOutputLine pops the oldest queued output line without blocking.
// Lines come back in the exact order the process produced them.
func (h *RunHandle) PollOutputLine() (string, bool) {
	line, ok := h.PollLine()
	return line.Text, ok
}

// PollLine is PollOutputLine with the severity tag attached.
func (h *RunHandle) PollLine() (Line, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.queue) == 0 {
		return Line{}, false
	}

	line := h.queue[0]
	h.queue = h.queue[1:]
	return line, true
}

func (h *RunHandle) Progress() Progress { return h.progress.Current() }

// Wait blocks until the run reaches a terminal state or the context is
// cancelled.
func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

// Cancel sends SIGTERM to the whole process group. The downloader
// spawns its own children, so signalling just the parent pid would
// leave them behind. Remaining buffered output is still drained before
// the handle turns terminal.
func (h *RunHandle) Cancel() error {
	h.mu.Lock()
	if h.status != StatusRunning {
		h.mu.Unlock()
		return errors.New("process is not running")
	}
	h.cancelled = true
	proc := h.proc
	h.mu.Unlock()

	pgid, err := unix.Getpgid(proc.Pid)
	if err != nil {
		return err
	}

	return unix.Kill(-pgid, unix.SIGTERM)
}

func (h *RunHandle) Snapshot() *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Snapshot{
		Id:       h.id,
		Params:   h.params,
		Status:   h.status,
		Progress: h.progress.Current(),
	}

	if h.hasExit {
		code := h.exitCode
		s.ExitCode = &code
	}

	return s
}

// supervise owns the process for its whole lifetime: it splits the
// combined output into lines, relays them, then records the exit code
// exactly once.
func (h *RunHandle) supervise(cmd *exec.Cmd, out *os.File) {
	lines := make(chan string)

	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(lines)
		defer out.Close()

		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			lines <- scanner.Text()
		}
		return scanner.Err()
	})
	g.Go(func() error {
		for text := range lines {
			line := Line{Text: text, Severity: Classify(text)}

			h.progress.Consume(text)

			h.mu.Lock()
			h.queue = append(h.queue, line)
			h.mu.Unlock()

			h.pub.Line(h.id, line)
		}
		return nil
	})

	waitErr := cmd.Wait()
	g.Wait()

	h.finish(waitErr)
}

func (h *RunHandle) finish(waitErr error) {
	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	h.mu.Lock()
	status := StatusSucceeded
	switch {
	case h.cancelled:
		status = StatusCancelled
	case code != 0:
		status = StatusFailed
	}

	h.status = status
	h.exitCode = code
	h.hasExit = true
	h.mu.Unlock()

	close(h.done)
	h.pub.Completed(h.id, status, code)
}
