package server

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/onnwee/bunt/telemetry"
)

var errChatDisconnected = errors.New("chat not connected")

// HandleHealthz responds to liveness probes. It fails only when the command-log
// database is configured and unreachable.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDB(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probes with the first failing check.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.pingDB(r.Context()) }},
		{"chat", func() error {
			if h.deps.Chat != nil && !h.deps.Chat.Connected() {
				return errChatDisconnected
			}
			return nil
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Uptime         string `json:"uptime"`
	ChatConnected  *bool  `json:"chat_connected,omitempty"`
	CachedGamePK   *int64 `json:"cached_game_pk,omitempty"`
	CommandLog     bool   `json:"command_log"`
	TracingEnabled bool   `json:"tracing_enabled"`
}

// HandleStatus reports process state for operators.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Uptime:         time.Since(h.started).Round(time.Second).String(),
		CommandLog:     h.deps.DB != nil,
		TracingEnabled: telemetry.IsTracingEnabled(),
	}
	if h.deps.Chat != nil {
		c := h.deps.Chat.Connected()
		resp.ChatConnected = &c
	}
	if h.deps.Games != nil {
		if pk, ok := h.deps.Games.Cached(); ok {
			resp.CachedGamePK = &pk
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
