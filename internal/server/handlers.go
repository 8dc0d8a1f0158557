package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexuscloud/nexus/internal/auth"
	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/supervisor"
	"github.com/nexuscloud/nexus/internal/terminal"
)

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

// --- auth ---

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *Router) handleLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	id, token, err := r.authSvc.Authenticate(req.Username, req.Password)
	if err != nil {
		writeJSON(c, http.StatusUnauthorized, errorResp{Error: "Invalid"})
		return
	}
	c.SetCookie(auth.CookieName, token, 0, "/", "", false, true)
	writeJSON(c, http.StatusOK, id)
}

// handleLogout acknowledges only; the token stays valid until the daemon
// exits and the client simply discards its cookie.
func (r *Router) handleLogout(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

// --- bots ---

func (r *Router) handleListBots(c *gin.Context) {
	id := auth.IdentityFrom(c)
	writeJSON(c, http.StatusOK, r.reg.ListBots(id.Username, id.Role))
}

type createBotReq struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	RAM     string `json:"ram"`
	Storage string `json:"storage"`
	Env     string `json:"env"`
}

func (r *Router) handleCreateBot(c *gin.Context) {
	var req createBotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	id := auth.IdentityFrom(c)
	bot, err := r.reg.CreateBot(id.Username, id.Role, req.Name, req.Type, req.RAM, req.Storage, req.Env)
	if errors.Is(err, registry.ErrQuotaExceeded) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "Limit Reached"})
		return
	}
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	if err := r.ws.Provision(bot.ID, bot.Type); err != nil {
		_ = r.reg.DeleteBot(bot.ID)
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": bot.ID})
}

func (r *Router) handleDeleteBot(c *gin.Context) {
	botID := c.Param("id")
	bot, ok := r.reg.GetBot(botID)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "Not found"})
		return
	}
	id := auth.IdentityFrom(c)
	if id.Role != registry.RoleAdmin && bot.Owner != id.Username {
		writeJSON(c, http.StatusForbidden, errorResp{Error: "Forbidden"})
		return
	}
	r.sup.Kill(botID)
	if err := r.ws.Destroy(botID); err != nil {
		slog.Warn("workspace destroy failed", "bot", botID, "error", err)
	}
	if err := r.reg.DeleteBot(botID); err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

type controlReq struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

func (r *Router) handleControl(c *gin.Context) {
	var req controlReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	bot, ok := r.reg.GetBot(req.ID)
	id := auth.IdentityFrom(c)
	if !ok || (id.Role != registry.RoleAdmin && bot.Owner != id.Username) {
		writeJSON(c, http.StatusForbidden, errorResp{Error: "Forbidden"})
		return
	}

	switch req.Action {
	case "start":
		err := r.sup.Start(req.ID)
		if errors.Is(err, supervisor.ErrAlreadyRunning) {
			writeJSON(c, http.StatusOK, errorResp{Error: "Running"})
			return
		}
		if err != nil {
			// spawn failure: the record stays stopped
			writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
			return
		}
		writeJSON(c, http.StatusOK, okResp{OK: true})
	case "stop":
		_ = r.sup.Stop(req.ID)
		writeJSON(c, http.StatusOK, okResp{OK: true})
	default:
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "unknown action"})
	}
}

// --- logs / terminal ---

func (r *Router) handleLogs(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.buf.Snapshot())
}

type terminalReq struct {
	Command string `json:"command"`
}

func (r *Router) handleTerminal(c *gin.Context) {
	var req terminalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	out, err := r.term.Run(auth.IdentityFrom(c).Role, req.Command)
	if errors.Is(err, terminal.ErrPermissionDenied) {
		writeJSON(c, http.StatusOK, errorResp{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"output": out})
}

// --- users (admin only) ---

func (r *Router) handleListUsers(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.reg.Accounts())
}

type createUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *Router) handleCreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	role := registry.Role(req.Role)
	if role != registry.RoleAdmin {
		role = registry.RoleUser
	}
	err := r.reg.CreateAccount(req.Username, req.Password, role)
	if errors.Is(err, registry.ErrUserExists) {
		writeJSON(c, http.StatusOK, errorResp{Error: "Exists"})
		return
	}
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleDeleteUser(c *gin.Context) {
	err := r.reg.DeleteAccount(c.Param("username"))
	if errors.Is(err, registry.ErrProtectedAccount) {
		writeJSON(c, http.StatusOK, errorResp{Error: "Cannot delete root"})
		return
	}
	// deleting an unknown user is tolerated
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

// --- shutdown ---

func (r *Router) handleShutdown(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{})
	time.AfterFunc(100*time.Millisecond, r.shutdown)
}
