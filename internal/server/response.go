package server

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // nothing useful to do once headers are sent
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message}. Check failures are reported with
// 200 so that clients polling the service always get a JSON body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
