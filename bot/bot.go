// Package bot dispatches chat commands to the query components and sends the
// rendered reply. Every failure stops at OnMessage, which logs and discards it.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/onnwee/bunt/percentile"
	"github.com/onnwee/bunt/render"
	"github.com/onnwee/bunt/savant"
	"github.com/onnwee/bunt/statsapi"
	"github.com/onnwee/bunt/telemetry"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "~"

// Outcomes recorded per command.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// ErrUnknownCommand is returned by Dispatch for text that names no command.
var ErrUnknownCommand = errors.New("unknown command")

// Message is an inbound chat line.
type Message struct {
	Channel string
	User    string
	Text    string
}

// Replier delivers a rendered reply to where the command came from.
type Replier interface {
	Reply(ctx context.Context, m render.Message) error
}

// Typer is implemented by repliers that can show a "working" indicator.
type Typer interface {
	Typing(ctx context.Context) error
}

// GameSource resolves the configured team's live game.
type GameSource interface {
	Resolve(ctx context.Context) (*savant.LiveGame, error)
}

// PlayerSource finds players and their percentile rankings.
type PlayerSource interface {
	SearchPlayer(ctx context.Context, name string) (int64, bool, error)
	PercentileProfile(ctx context.Context, playerID int64) (*percentile.Profile, error)
}

// StandingsSource fetches league standings.
type StandingsSource interface {
	Standings(ctx context.Context, leagueID int64) ([]statsapi.DivisionRecord, error)
}

// CommandRecord is one handled command, as written to the command log.
type CommandRecord struct {
	CorrelationID string
	Channel       string
	User          string
	Verb          string
	Outcome       string
	Duration      time.Duration
	At            time.Time
}

// CommandLog persists handled commands.
type CommandLog interface {
	RecordCommand(ctx context.Context, rec CommandRecord) error
}

// Handler routes commands. Prefix defaults to DefaultPrefix; Log and Now are optional.
type Handler struct {
	Prefix    string
	TeamID    int64
	Games     GameSource
	Players   PlayerSource
	Standings StandingsSource
	Log       CommandLog
	Now       func() time.Time
}

type command func(h *Handler, ctx context.Context, verb string, args []string, rest string, r Replier) (string, error)

var commands = map[string]command{
	"ev":        (*Handler).battedBall,
	"st":        (*Handler).standingsTable,
	"standings": (*Handler).standingsTable,
	"wc":        (*Handler).standingsTable,
	"wildcard":  (*Handler).standingsTable,
	"sav":       (*Handler).percentiles,
	"savant":    (*Handler).percentiles,
	"h":         (*Handler).help,
	"help":      (*Handler).help,
}

func (h *Handler) prefix() string {
	if h.Prefix == "" {
		return DefaultPrefix
	}
	return h.Prefix
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// parse splits text into verb, whitespace-separated args and the raw remainder.
func (h *Handler) parse(text string) (verb string, args []string, rest string, ok bool) {
	body, found := strings.CutPrefix(text, h.prefix())
	if !found {
		return "", nil, "", false
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", nil, "", false
	}
	verb = fields[0]
	if _, known := commands[verb]; !known {
		return "", nil, "", false
	}
	rest = strings.TrimSpace(strings.TrimLeftFunc(body, unicode.IsSpace)[len(verb):])
	return verb, fields[1:], rest, true
}

// IsCommand reports whether text invokes a known command.
func (h *Handler) IsCommand(text string) bool {
	_, _, _, ok := h.parse(text)
	return ok
}

// Dispatch runs the command in msg and returns its outcome.
func (h *Handler) Dispatch(ctx context.Context, msg Message, r Replier) (string, error) {
	verb, args, rest, ok := h.parse(msg.Text)
	if !ok {
		return "", ErrUnknownCommand
	}
	return commands[verb](h, ctx, verb, args, rest, r)
}

// OnMessage handles one inbound line end to end. Errors are logged, never returned.
func (h *Handler) OnMessage(ctx context.Context, msg Message, r Replier) {
	verb, _, _, ok := h.parse(msg.Text)
	if !ok {
		return
	}
	corr := uuid.NewString()
	ctx = telemetry.WithCorrelation(ctx, corr)
	logger := telemetry.LoggerWithCorr(ctx).With("component", "bot", "verb", verb, "channel", msg.Channel, "user", msg.User)

	ctx, span := telemetry.StartSpan(ctx, "bunt/bot", "bot.command", telemetry.CommandAttr(verb))
	defer span.End()

	start := h.now()
	outcome, err := h.Dispatch(ctx, msg, r)
	elapsed := h.now().Sub(start)
	if err != nil {
		outcome = OutcomeError
		telemetry.RecordError(span, err)
		logger.Error("command failed", slog.Any("err", err), slog.Duration("elapsed", elapsed))
	} else {
		telemetry.SetSpanSuccess(span)
		logger.Debug("command handled", slog.String("outcome", outcome), slog.Duration("elapsed", elapsed))
	}
	telemetry.ObserveCommand(verb, outcome, elapsed)

	if h.Log != nil {
		rec := CommandRecord{
			CorrelationID: corr,
			Channel:       msg.Channel,
			User:          msg.User,
			Verb:          verb,
			Outcome:       outcome,
			Duration:      elapsed,
			At:            start.UTC(),
		}
		if lerr := h.Log.RecordCommand(ctx, rec); lerr != nil {
			logger.Warn("command log write failed", slog.Any("err", lerr))
		}
	}
}

func typing(ctx context.Context, r Replier) {
	if t, ok := r.(Typer); ok {
		if err := t.Typing(ctx); err != nil {
			telemetry.LoggerWithCorr(ctx).Debug("typing indicator failed", slog.Any("err", err))
		}
	}
}
