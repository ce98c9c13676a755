// Package web embeds the demo frontend: a canvas renderer for the orbital
// view fed by the SSE frame stream, plus the classification form.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html app.js styles.css
var Content embed.FS

// Handler serves the embedded frontend at the root path.
func Handler() http.Handler {
	return http.FileServer(http.FS(Content))
}
