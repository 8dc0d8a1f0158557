package server

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexuscloud/nexus/internal/auth"
	"github.com/nexuscloud/nexus/internal/logbuf"
	"github.com/nexuscloud/nexus/internal/metrics"
	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/supervisor"
	"github.com/nexuscloud/nexus/internal/terminal"
	"github.com/nexuscloud/nexus/internal/workspace"
)

// Router exposes the panel's HTTP surface. All state is injected; there are
// no package-level registries.
type Router struct {
	reg      *registry.Registry
	authSvc  *auth.Service
	sup      *supervisor.Supervisor
	ws       *workspace.Store
	term     *terminal.Executor
	buf      *logbuf.Buffer
	shutdown func()
}

// NewRouter wires the handler set. shutdown terminates the whole daemon; it
// is invoked (after a short delay) by POST /api/shutdown.
func NewRouter(reg *registry.Registry, authSvc *auth.Service, sup *supervisor.Supervisor,
	ws *workspace.Store, term *terminal.Executor, buf *logbuf.Buffer, shutdown func()) *Router {
	return &Router{
		reg:      reg,
		authSvc:  authSvc,
		sup:      sup,
		ws:       ws,
		term:     term,
		buf:      buf,
		shutdown: shutdown,
	}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())

	g.GET("/", r.handleIndex)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	g.POST("/auth", r.handleLogin)

	authed := g.Group("", r.authSvc.GinAuth())
	authed.DELETE("/auth", r.handleLogout)

	api := authed.Group("/api")
	api.GET("/servers", r.handleListBots)
	api.POST("/servers", r.handleCreateBot)
	api.DELETE("/servers/:id", r.handleDeleteBot)
	api.POST("/control", r.handleControl)
	api.GET("/logs", r.handleLogs)
	api.POST("/terminal", r.handleTerminal)

	api.GET("/files/list", r.handleListFiles)
	api.GET("/files/read", r.handleReadFile)
	api.POST("/files/write", r.handleWriteFile)
	api.DELETE("/files/delete", r.handleDeleteFile)

	adm := api.Group("", auth.RequireAdmin())
	adm.GET("/users", r.handleListUsers)
	adm.POST("/users", r.handleCreateUser)
	adm.DELETE("/users/:username", r.handleDeleteUser)
	adm.POST("/shutdown", r.handleShutdown)

	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// A non-nil tlsCfg switches the listener to HTTPS.
func NewServer(addr string, r *Router, tlsCfg *tls.Config) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if tlsCfg != nil {
			_ = srv.ListenAndServeTLS("", "")
		} else {
			_ = srv.ListenAndServe()
		}
	}()
	return srv
}
