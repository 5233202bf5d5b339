package updater

import (
	"context"
	"log/slog"
	"os/exec"
)

// Update runs the downloader's builtin self-update (-U). Invoked once
// at startup when updates.update_on_start is set, and exposed on the
// API so the user can trigger it from the settings screen.
func Update(ctx context.Context, bin string) error {
	cmd := exec.CommandContext(ctx, bin, "-U")

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		slog.Info("downloader self-update", slog.String("output", string(out)))
	}

	return err
}
