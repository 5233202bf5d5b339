package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ytdesk/ytdesk/server/internal/runner"
	"github.com/ytdesk/ytdesk/server/internal/store"
	"github.com/ytdesk/ytdesk/server/logging"
	"github.com/ytdesk/ytdesk/server/presets"
	"github.com/ytdesk/ytdesk/server/settings"
)

type Handler struct {
	service *Service
	logs    *logging.Observable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *runner.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound), errors.Is(err, presets.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, runner.ErrToolNotFound):
		status = http.StatusFailedDependency
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) Exec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runner.DownloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		id, err := h.service.Exec(req)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func (h *Handler) ListFormats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		id, err := h.service.ListFormats(req.URL)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func (h *Handler) Running() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.service.Running())
	}
}

func (h *Handler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.service.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *Handler) PollOutput() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		max, _ := strconv.Atoi(r.URL.Query().Get("max"))

		lines, err := h.service.PollOutput(chi.URLParam(r, "id"), max)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, lines)
	}
}

func (h *Handler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Cancel(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) ClearCompleted() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"removed": h.service.ClearCompleted()})
	}
}

func (h *Handler) GetSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.service.GetSettings())
	}
}

func (h *Handler) UpdateSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st settings.Settings
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		saved, err := h.service.UpdateSettings(st)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, saved)
	}
}

func (h *Handler) Version() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, downloader, err := h.service.Version(r.Context())

		resp := map[string]string{
			"backend":    backend,
			"downloader": downloader,
		}
		if err != nil {
			resp["error"] = err.Error()
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) UpdateDownloader() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.UpdateDownloader(r.Context()); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) FreeSpace() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		free, err := h.service.FreeSpace()
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]uint64{"free": free})
	}
}

func (h *Handler) DirectoryTree() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := h.service.DirectoryTree()
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tree)
	}
}

func (h *Handler) SavePreset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p presets.Preset
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		if err := h.service.SavePreset(&p); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func (h *Handler) ListPresets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := h.service.ListPresets()
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, all)
	}
}

func (h *Handler) GetPreset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.service.GetPreset(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func (h *Handler) DeletePreset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeletePreset(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := h.service.History(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

func (h *Handler) ClearHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.ClearHistory(r.Context()); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) Log() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.logs.Lines())
	}
}
