package controllers

import (
	"net/http"
	"os"
	"time"
)

var startTime = time.Now()

// Health reports service liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(startTime).Seconds(),
		"environment": os.Getenv("APP_ENV"),
	})
}
