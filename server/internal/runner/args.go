package runner

import "path/filepath"

const defaultFilename = "%(title)s"

// Flags every invocation carries: one line per progress event, no ANSI
// escapes, and no surprise playlist expansion. Keeps the output stream
// line-oriented for the relay.
var baseArgs = []string{"--newline", "--no-colors", "--no-playlist"}

// BuildArgs maps a validated request to the downloader's argument
// vector. The mapping is deterministic: identical requests yield
// identical vectors, and the URL is always the last token.
func BuildArgs(req DownloadRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(baseArgs)+8)
	args = append(args, baseArgs...)

	switch req.Mode {
	case ModeAudio:
		args = append(args, "-x", "--audio-format", "mp3")
	case ModeVideo:
		// the selector is the user's expression, verbatim and unsplit
		args = append(args, "-f", req.Format, "--merge-output-format", "mp4")
	}

	args = append(args, "-o", outputTemplate(req))
	args = append(args, req.URL)

	return args, nil
}

// BuildListFormatsArgs builds the vector for a format listing (-F) of
// the given URL, used when the user has not picked a selector yet.
func BuildListFormatsArgs(url string) []string {
	args := make([]string, 0, len(baseArgs)+2)
	args = append(args, baseArgs...)
	return append(args, "-F", url)
}

func outputTemplate(req DownloadRequest) string {
	name := req.Filename
	if name == "" {
		name = defaultFilename
	}

	dir := req.DestinationFolder
	if dir == "" {
		dir = "."
	}

	// extension stays under the downloader's control
	return filepath.Join(dir, name+".%(ext)s")
}
