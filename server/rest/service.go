package rest

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ytdesk/ytdesk/server/config"
	"github.com/ytdesk/ytdesk/server/history"
	"github.com/ytdesk/ytdesk/server/internal/runner"
	"github.com/ytdesk/ytdesk/server/internal/store"
	"github.com/ytdesk/ytdesk/server/presets"
	"github.com/ytdesk/ytdesk/server/settings"
	"github.com/ytdesk/ytdesk/server/sys"
	"github.com/ytdesk/ytdesk/server/updater"
)

// ErrBusy rejects a start while another download is in flight. The
// frontend disables its start control, the service enforces it.
var ErrBusy = errors.New("a download is already in progress")

type Service struct {
	settings *settings.Store
	runner   *runner.Runner
	store    *store.Store
	presets  *presets.Store
	history  *history.Repository

	// serializes spawn attempts so two requests cannot both pass the
	// single-active check
	execMu sync.Mutex
}

func NewService(args *ContainerArgs) *Service {
	return &Service{
		settings: args.Settings,
		runner:   args.Runner,
		store:    args.Store,
		presets:  args.Presets,
		history:  args.History,
	}
}

// Exec validates the request, builds the argument vector and spawns the
// downloader. Returns the new run's id.
func (s *Service) Exec(req runner.DownloadRequest) (string, error) {
	if req.DestinationFolder == "" {
		req.DestinationFolder = s.settings.Load().DownloadFolder
	}

	args, err := runner.BuildArgs(req)
	if err != nil {
		return "", err
	}

	h, err := s.start(args)
	if err != nil {
		return "", err
	}

	go s.record(req, h)

	return h.GetId(), nil
}

// ListFormats spawns a format listing (-F) for the given URL, relayed
// through a regular run handle so the frontend shows it in the same log
// view. Used when the user has not decided on a selector yet.
func (s *Service) ListFormats(url string) (string, error) {
	if url == "" {
		return "", &runner.ValidationError{Field: "url", Reason: "must not be empty"}
	}

	h, err := s.start(runner.BuildListFormatsArgs(url))
	if err != nil {
		return "", err
	}

	return h.GetId(), nil
}

func (s *Service) start(args []string) (*runner.RunHandle, error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	if _, busy := s.store.Active(); busy {
		return nil, ErrBusy
	}

	h, err := s.runner.Run(args)
	if err != nil {
		return nil, err
	}

	s.store.Set(h)
	return h, nil
}

// record waits for the run to settle and appends it to the history.
func (s *Service) record(req runner.DownloadRequest, h *runner.RunHandle) {
	if err := h.Wait(context.Background()); err != nil {
		return
	}

	code, _ := h.ExitCode()

	err := s.history.Append(context.Background(), &history.Entry{
		URL:      req.URL,
		Mode:     string(req.Mode),
		Format:   req.Format,
		Path:     req.DestinationFolder,
		ExitCode: code,
		Status:   string(h.Status()),
	})
	if err != nil {
		slog.Error("failed to record download", slog.Any("err", err))
	}
}

func (s *Service) Running() []runner.Snapshot {
	return s.store.All()
}

func (s *Service) Get(id string) (*runner.Snapshot, error) {
	h, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	return h.Snapshot(), nil
}

// PollOutput pops up to max queued output lines of a run.
func (s *Service) PollOutput(id string, max int) ([]runner.Line, error) {
	h, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	if max <= 0 {
		max = 100
	}

	lines := make([]runner.Line, 0, max)
	for len(lines) < max {
		line, ok := h.PollLine()
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (s *Service) Cancel(id string) error {
	h, err := s.store.Get(id)
	if err != nil {
		return err
	}

	return h.Cancel()
}

func (s *Service) ClearCompleted() int {
	return s.store.ClearCompleted()
}

func (s *Service) GetSettings() settings.Settings {
	return s.settings.Load()
}

// UpdateSettings persists the new preferences immediately, so they
// survive a crash between changes.
func (s *Service) UpdateSettings(st settings.Settings) (settings.Settings, error) {
	if err := s.settings.Save(st); err != nil {
		// non-fatal for the application, but the caller should know
		slog.Error("failed to save settings", slog.Any("err", err))
		return settings.Settings{}, err
	}

	return s.settings.Load(), nil
}

const currentVersion = "1.2.0"

func (s *Service) Version(ctx context.Context) (backend, downloader string, err error) {
	ctx, cancel := context.WithTimeout(ctx, config.Instance().VersionTimeout())
	defer cancel()

	downloader, err = s.runner.Version(ctx)
	return currentVersion, downloader, err
}

func (s *Service) UpdateDownloader(ctx context.Context) error {
	return updater.Update(ctx, config.Instance().Paths.DownloaderPath)
}

func (s *Service) FreeSpace() (uint64, error) {
	return sys.FreeSpace(s.settings.Load().DownloadFolder)
}

func (s *Service) DirectoryTree() ([]string, error) {
	return sys.DirectoryTree(s.settings.Load().DownloadFolder)
}

func (s *Service) SavePreset(p *presets.Preset) error { return s.presets.Save(p) }
func (s *Service) ListPresets() ([]presets.Preset, error) { return s.presets.List() }
func (s *Service) DeletePreset(id string) error { return s.presets.Delete(id) }

func (s *Service) GetPreset(id string) (*presets.Preset, error) {
	return s.presets.Get(id)
}

func (s *Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return s.history.List(ctx, limit)
}

func (s *Service) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}
