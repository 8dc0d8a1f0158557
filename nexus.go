package nexus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nexuscloud/nexus/internal/auth"
	"github.com/nexuscloud/nexus/internal/config"
	"github.com/nexuscloud/nexus/internal/history"
	"github.com/nexuscloud/nexus/internal/history/factory"
	"github.com/nexuscloud/nexus/internal/logbuf"
	"github.com/nexuscloud/nexus/internal/metrics"
	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/server"
	"github.com/nexuscloud/nexus/internal/supervisor"
	"github.com/nexuscloud/nexus/internal/terminal"
	"github.com/nexuscloud/nexus/internal/workspace"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Bot = registry.Bot

type Account = registry.Account

type LogEntry = logbuf.Entry

// App is the top-level context owning every component. All state is held
// here and injected into each constructor; there are no ambient globals.
type App struct {
	Config     Config
	Registry   *registry.Registry
	Auth       *auth.Service
	Workspace  *workspace.Store
	Supervisor *supervisor.Supervisor
	Terminal   *terminal.Executor
	Logs       *logbuf.Buffer

	histSink history.Sink
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a TOML config file over the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// New assembles the panel: loads the registry (resetting run state),
// migrates legacy workspace layouts, and wires the supervisor, sandbox,
// terminal, and optional history sink.
func New(cfg Config) (*App, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}

	reg, err := registry.Load(cfg.DataDir, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New(cfg.BotsDir)
	if err != nil {
		return nil, err
	}
	ws.MigrateLegacy(reg.BotIDs())

	buf := logbuf.New(cfg.LogBuffer)
	sup := supervisor.New(reg, ws, buf, cfg.Runtime)

	app := &App{
		Config:     cfg,
		Registry:   reg,
		Auth:       auth.NewService(reg),
		Workspace:  ws,
		Supervisor: sup,
		Terminal:   terminal.New(cfg.DataDir),
		Logs:       buf,
	}

	if cfg.HistoryDSN != "" {
		sink, err := factory.NewSinkFromDSN(cfg.HistoryDSN)
		if err != nil {
			return nil, err
		}
		app.histSink = sink
		sup.SetHistorySinks(sink)
	}
	return app, nil
}

// Router builds the HTTP surface. shutdown is invoked by the admin-only
// shutdown endpoint.
func (a *App) Router(shutdown func()) *server.Router {
	return server.NewRouter(a.Registry, a.Auth, a.Supervisor, a.Workspace, a.Terminal, a.Logs, shutdown)
}

// Close kills every live bot process and releases the history sink.
func (a *App) Close() error {
	a.Supervisor.KillAll()
	if a.histSink != nil {
		return a.histSink.Close()
	}
	return nil
}
