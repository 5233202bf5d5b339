package rest

import (
	"github.com/ytdesk/ytdesk/server/history"
	"github.com/ytdesk/ytdesk/server/internal/runner"
	"github.com/ytdesk/ytdesk/server/internal/store"
	"github.com/ytdesk/ytdesk/server/logging"
	"github.com/ytdesk/ytdesk/server/presets"
	"github.com/ytdesk/ytdesk/server/settings"
)

type ContainerArgs struct {
	Settings *settings.Store
	Runner   *runner.Runner
	Store    *store.Store
	Presets  *presets.Store
	History  *history.Repository
	Logs     *logging.Observable
}
