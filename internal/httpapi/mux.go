package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
)

// NewMux returns a mux with the health check and, when staticDir exists,
// the static assets under /static/.
func NewMux(db *sql.DB, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	registerStatic(mux, staticDir)
	return mux
}

func registerStatic(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		return
	}
	info, err := os.Stat(staticDir)
	if err != nil || !info.IsDir() {
		slog.Warn("static dir not found, /static/ disabled", "dir", staticDir)
		return
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
}
