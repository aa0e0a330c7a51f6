package main

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// writeJSONError writes {"error": message, "details": [...]}. details is
// omitted when nil; a non-nil empty slice is written as [].
func writeJSONError(w http.ResponseWriter, status int, message string, details []string) error {
	type envelope struct {
		Error   string `json:"error"`
		Details any    `json:"details,omitempty"`
	}

	env := envelope{Error: message}
	if details != nil {
		env.Details = details
	}
	return writeJSON(w, status, &env)
}

// jsonResponse wraps operational payloads (health and the like) in {"data": ...}.
func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}
