// Package handlers provides HTTP handlers for the baropodometry API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{OK: false, Error: message})
}

// statusFor maps domain error types onto HTTP statuses. Only caller
// mistakes are 400; everything else is a server-side failure.
func statusFor(err error) int {
	if domain.TypeOf(err) == domain.ErrorTypeValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// messageFor returns the client-facing message without the internal
// error chain.
func messageFor(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
