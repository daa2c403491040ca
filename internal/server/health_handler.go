// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import "net/http"

// HandleHealth handles GET /api/v1/health requests
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "up",
		"version": "1.0",
	})
}
