package runner

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// DownloadRequest describes a single invocation of the external
// downloader, as filled in by the frontend form.
type DownloadRequest struct {
	Mode              Mode   `json:"mode"`
	URL               string `json:"url"`
	Format            string `json:"format,omitempty"`
	Filename          string `json:"filename,omitempty"`
	DestinationFolder string `json:"destination_folder,omitempty"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Validate re-checks what the frontend should already enforce before
// enabling its start control. The format selector is required for video
// and passed through opaquely, never parsed.
func (r *DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return &ValidationError{Field: "url", Reason: "must not be empty"}
	}

	switch r.Mode {
	case ModeAudio:
	case ModeVideo:
		if strings.TrimSpace(r.Format) == "" {
			return &ValidationError{Field: "format", Reason: "must not be empty for video downloads"}
		}
	default:
		return &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
	}

	return nil
}
