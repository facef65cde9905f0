package api

import (
	_ "embed"
	"net/http"
)

// The dashboard is a static shell: it polls /api/movers and /api/count and
// renders the ranked list client-side. All display logic lives in the page.
//
//go:embed web/index.html
var dashboardHTML []byte

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(dashboardHTML)
}
