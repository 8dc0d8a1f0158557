package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

func writeJSON(c *gin.Context, code int, v any) {
	c.Header("Content-Type", "application/json")
	c.Status(code)
	_ = json.NewEncoder(c.Writer).Encode(v)
}

// The dashboard is delivered out of band; the daemon only confirms it is up.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Nexus Cloud Control</title></head>
<body><h1>NEXUS</h1><p>Panel API is running. Authenticate via POST /auth.</p></body>
</html>
`

func (r *Router) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}
