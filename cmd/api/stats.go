package main

import (
	"net/http"

	"github.com/pefman/terraform-tracker/internal/stats"
)

// GET /stats?roomId=...
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Room(roomID(r)))
}
