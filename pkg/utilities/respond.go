package utilities

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape: code mirrors the HTTP status,
// message is human-readable, and exactly one of Result/Data carries the
// payload (account endpoints use result, catalog endpoints use data).
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}

// WriteResult writes a response with the payload under "result".
func WriteResult(w http.ResponseWriter, status int, message string, result any) {
	writeEnvelope(w, status, Envelope{Code: status, Message: message, Result: result})
}

// WriteData writes a response with the payload under "data".
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, Envelope{Code: status, Message: message, Data: data})
}

// WriteError writes a payload-free error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Envelope{Code: status, Message: message})
}
