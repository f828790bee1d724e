package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/andres10976/webspider/backend/internal/service/events"
)

const maxBodyBytes = 1 << 20 // 1 MB

type changePublisher interface {
	Publish(ctx context.Context, c events.Change) error
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// decodeBody reads a JSON body of at most maxBodyBytes into v and writes
// a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// publish sends a change event after a committed mutation. The mutation
// already happened, so a failure is only logged.
func publish(ctx context.Context, p changePublisher, c events.Change) {
	if err := p.Publish(ctx, c); err != nil {
		slog.Warn("failed to publish change event",
			"action", c.Action, "key", c.Key, "error", err)
	}
}
