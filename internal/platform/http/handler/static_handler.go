package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SPA serves files under dir and falls back to dir/index.html for any other
// GET or HEAD outside /api. Unknown /api paths get a JSON 404. Use it as the
// engine's NoRoute handler.
func SPA(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
			return
		}
		if dir == "" {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
			return
		}

		// path.Clean on a rooted path cannot climb above dir.
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
			return
		}
		c.File(index)
	}
}
