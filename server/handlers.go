package server

import (
	"context"
	"database/sql"
	"time"
)

// ChatStatus reports the chat connection state.
type ChatStatus interface {
	Connected() bool
}

// GameCache exposes the resolver's cached game id.
type GameCache interface {
	Cached() (int64, bool)
}

// Deps are the optional components the probes inspect. Nil fields are skipped.
type Deps struct {
	DB    *sql.DB
	Chat  ChatStatus
	Games GameCache
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	deps    Deps
	started time.Time
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{deps: deps, started: time.Now()}
}

func (h *Handlers) pingDB(ctx context.Context) error {
	if h.deps.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.deps.DB.PingContext(ctx)
}
