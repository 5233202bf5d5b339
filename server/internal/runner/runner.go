// Package runner bridges the blocking external downloader process to
// the non-blocking API surface: it builds argument vectors, spawns the
// process, and relays its combined output line by line.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/alessio/shellescape"
	"github.com/google/uuid"
)

// ErrToolNotFound marks a missing or non-executable downloader binary.
// It is reported before a handle ever exists, distinct from a download
// that started and then failed.
var ErrToolNotFound = errors.New("downloader executable not found")

// Publisher receives run lifecycle notifications. The supervising
// goroutine calls it for every relayed line and once on completion;
// implementations must not block.
type Publisher interface {
	Started(id string, params []string)
	Line(id string, line Line)
	Completed(id string, status Status, exitCode int)
}

type nopPublisher struct{}

func (nopPublisher) Started(string, []string)      {}
func (nopPublisher) Line(string, Line)             {}
func (nopPublisher) Completed(string, Status, int) {}

// Runner spawns downloader processes for a fixed binary path.
type Runner struct {
	bin string
	pub Publisher
}

func New(bin string, pub Publisher) *Runner {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &Runner{bin: bin, pub: pub}
}

// Run spawns the downloader with the given argument vector and returns
// immediately. Output relay and exit bookkeeping happen on a dedicated
// goroutine owned by the returned handle.
func (r *Runner) Run(params []string) (*RunHandle, error) {
	bin, err := exec.LookPath(r.bin)
	if err != nil {
		return nil, errors.Join(ErrToolNotFound, err)
	}

	cmd := exec.Command(bin, params...)
	// own process group, so Cancel can signal yt-dlp and its children
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// stdout and stderr share one pipe: lines arrive interleaved in the
	// order the process wrote them, which is the order the UI shows
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	slog.Info("starting downloader",
		slog.String("cmd", shellescape.QuoteCommand(append([]string{bin}, params...))),
	)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("failed to spawn downloader: %w", err)
	}

	// the child holds its own copy of the write end
	pw.Close()

	h := &RunHandle{
		id:       uuid.NewString(),
		params:   params,
		proc:     cmd.Process,
		pub:      r.pub,
		progress: NewTracker(),
		done:     make(chan struct{}),
		status:   StatusRunning,
	}

	r.pub.Started(h.id, params)
	go h.supervise(cmd, pr)

	return h, nil
}

// Version asks the downloader for its version string, bounded by the
// context deadline so a wedged binary cannot stall the caller.
func (r *Runner) Version(ctx context.Context) (string, error) {
	bin, err := exec.LookPath(r.bin)
	if err != nil {
		return "", errors.Join(ErrToolNotFound, err)
	}

	out, err := exec.CommandContext(ctx, bin, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to read downloader version: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}
