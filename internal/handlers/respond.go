// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers serves the mailcanvas HTTP API: the persistence endpoints
// used by editors and the CLI, the editor session endpoints and the
// server-rendered editor pages.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/facade"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// writeError maps a domain error to its status code. fallback is the
// message used for storage and internal failures; the underlying error goes
// into details.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *canvas.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message, verr.Field)
	case errors.Is(err, canvas.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, facade.ErrStorageUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, fallback, err.Error())
	case canvas.IsIO(err):
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusBadGateway, fallback, err.Error())
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, fallback, err.Error())
	}
}

// decodeJSON reads a JSON request body capped at limit bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &canvas.ValidationError{Field: "body", Message: "Invalid JSON body"}
	}
	return nil
}
