// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"
)

const (
	msgInvalidInput  = "Invalid input."
	msgInternal      = "Something went wrong while processing your request."
	msgQuotaExceeded = "You have exceeded the number of free requests for today."
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	OK      bool        `json:"ok"`
	Error   string      `json:"error"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	body.OK = false
	writeJSON(w, status, body)
}
