package runner

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dannav/hhmmss"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Classify tags a line for display purposes only. The relay never
// interprets output beyond this: the text reaches the consumer verbatim.
func Classify(line string) Severity {
	switch {
	case strings.HasPrefix(line, "ERROR:"):
		return SeverityError
	case strings.HasPrefix(line, "WARNING:"):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

var (
	percentRe = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)
	etaRe     = regexp.MustCompile(`ETA\s+(\d{1,2}:\d{2}(?::\d{2})?)`)
)

type Progress struct {
	Percentage float64 `json:"percentage"`
	ETASeconds float64 `json:"eta_seconds,omitempty"`
}

// Tracker extracts a progress snapshot from the downloader's [download]
// lines so the frontend can drive its progress bar. Lines that do not
// match are ignored.
type Tracker struct {
	mu  sync.Mutex
	cur Progress
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Consume(line string) {
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return
	}

	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cur.Percentage = pct

	if em := etaRe.FindStringSubmatch(line); em != nil {
		if eta, ok := parseETA(em[1]); ok {
			t.cur.ETASeconds = eta.Seconds()
		}
	}
}

func (t *Tracker) Current() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// yt-dlp prints short ETAs as MM:SS; pad to HH:MM:SS before parsing.
func parseETA(ts string) (time.Duration, bool) {
	if strings.Count(ts, ":") == 1 {
		ts = "00:" + ts
	}

	d, err := hhmmss.Parse(ts)
	if err != nil {
		return 0, false
	}

	return d, true
}
