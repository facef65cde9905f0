// Package function adapts the movers API to one-shot hosting platforms
// that route each HTTP request into an exported handler. The server (and
// with it the result cache) is built once per process and reused across
// invocations, so cache lifetime matches the platform's process lifetime.
package function

import (
	"net/http"
	"sync"

	"movers/internal/api"
	"movers/internal/config"
	"movers/internal/jira"
	"movers/internal/logging"
)

var (
	once   sync.Once
	server *api.Server
)

// Handler serves one request. It exposes the same routes and contracts as
// the long-running server started by `movers serve`.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initServer)
	server.ServeHTTP(w, r)
}

func initServer() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		cfg = config.DefaultConfig()
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.LogLevel(cfg.Logging.Level),
	})

	// A missing tracker configuration surfaces per-request as a typed
	// error rather than failing cold start.
	client, err := jira.NewClient(cfg, logger)
	if err != nil {
		logger.Warn("Tracker connection unconfigured", map[string]interface{}{
			"error": err.Error(),
		})
		client = nil
	}

	server = api.NewServer("", cfg, client, logger)
}
