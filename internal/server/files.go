package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexuscloud/nexus/internal/auth"
	"github.com/nexuscloud/nexus/internal/registry"
)

// botForFiles resolves the serverId query parameter and applies the
// ownership rule shared by every file endpoint. Unknown ids and foreign
// bots both answer 403; the sandbox never confirms which ids exist.
func (r *Router) botForFiles(c *gin.Context) (registry.Bot, bool) {
	bot, ok := r.reg.GetBot(c.Query("serverId"))
	id := auth.IdentityFrom(c)
	if !ok || (id.Role != registry.RoleAdmin && bot.Owner != id.Username) {
		writeJSON(c, http.StatusForbidden, errorResp{Error: "Forbidden"})
		return registry.Bot{}, false
	}
	return bot, true
}

func (r *Router) handleListFiles(c *gin.Context) {
	bot, ok := r.botForFiles(c)
	if !ok {
		return
	}
	files, err := r.ws.ListFiles(bot.ID)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, files)
}

func (r *Router) handleReadFile(c *gin.Context) {
	bot, ok := r.botForFiles(c)
	if !ok {
		return
	}
	data, err := r.ws.ReadFile(bot.ID, c.Query("file"))
	if err != nil {
		writeJSON(c, http.StatusOK, errorResp{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

type writeFileReq struct {
	ServerID string `json:"serverId"`
	File     string `json:"file"`
	Content  string `json:"content"`
}

func (r *Router) handleWriteFile(c *gin.Context) {
	bot, ok := r.botForFiles(c)
	if !ok {
		return
	}
	var req writeFileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	// body and query must agree on the target bot; the mismatch answer is a
	// 200 carrying a numeric 400, as the dashboard expects
	if req.ServerID != bot.ID {
		writeJSON(c, http.StatusOK, gin.H{"error": 400})
		return
	}
	if err := r.ws.WriteFile(bot.ID, req.File, []byte(req.Content)); err != nil {
		writeJSON(c, http.StatusOK, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleDeleteFile(c *gin.Context) {
	bot, ok := r.botForFiles(c)
	if !ok {
		return
	}
	if err := r.ws.DeleteFile(bot.ID, c.Query("file")); err != nil {
		writeJSON(c, http.StatusOK, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
