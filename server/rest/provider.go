package rest

import (
	"sync"

	"github.com/go-chi/chi/v5"
)

var (
	service *Service
	handler *Handler

	serviceOnce sync.Once
	handlerOnce sync.Once
)

func ProvideService(args *ContainerArgs) *Service {
	serviceOnce.Do(func() {
		service = NewService(args)
	})
	return service
}

func ProvideHandler(svc *Service, args *ContainerArgs) *Handler {
	handlerOnce.Do(func() {
		handler = &Handler{
			service: svc,
			logs:    args.Logs,
		}
	})
	return handler
}

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	h := ProvideHandler(ProvideService(args), args)

	return func(r chi.Router) {
		r.Post("/exec", h.Exec())
		r.Post("/formats", h.ListFormats())
		r.Get("/running", h.Running())
		r.Get("/run/{id}", h.Get())
		r.Get("/run/{id}/output", h.PollOutput())
		r.Post("/run/{id}/cancel", h.Cancel())
		r.Delete("/completed", h.ClearCompleted())

		r.Get("/settings", h.GetSettings())
		r.Patch("/settings", h.UpdateSettings())

		r.Get("/version", h.Version())
		r.Post("/update", h.UpdateDownloader())
		r.Get("/freespace", h.FreeSpace())
		r.Get("/tree", h.DirectoryTree())
		r.Get("/log", h.Log())

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", h.ListPresets())
			r.Post("/", h.SavePreset())
			r.Get("/{id}", h.GetPreset())
			r.Delete("/{id}", h.DeletePreset())
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.History())
			r.Delete("/", h.ClearHistory())
		})
	}
}
