package handler

import "net/http"

// HandleRoot returns the service banner.
//
// HTTP: GET /
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to SnipVault API",
	})
}

// HandleHealth reports liveness for load balancers and uptime checks.
//
// HTTP: GET /health
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
