package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/bunt/bot"
	"github.com/onnwee/bunt/render"
	"github.com/onnwee/bunt/telemetry"
)

// MaxMessageBytes is the longest line Twitch accepts in one PRIVMSG.
const MaxMessageBytes = 500

// Config holds the IRC identity and target channel. RateLimit commands per
// user are served within each RateWindow; zero disables the limit.
type Config struct {
	Channel    string
	Username   string
	OAuthToken string
	RateLimit  int
	RateWindow time.Duration
}

type sayer interface {
	Say(channel, text string)
}

// Bot connects a command handler to one Twitch channel.
type Bot struct {
	cfg     Config
	handler *bot.Handler
	mirror  bot.Replier
	limiter *userLimiter

	connected atomic.Bool
	inflight  sync.WaitGroup
}

// New returns a Bot. mirror, when non-nil, receives every reply as well.
func New(cfg Config, h *bot.Handler, mirror bot.Replier) *Bot {
	return &Bot{cfg: cfg, handler: h, mirror: mirror, limiter: newUserLimiter(cfg.RateLimit, cfg.RateWindow)}
}

// Connected reports whether the IRC connection is up.
func (b *Bot) Connected() bool { return b.connected.Load() }

// Run joins the channel and serves commands until ctx is cancelled. In-flight
// commands are awaited before it returns.
func (b *Bot) Run(ctx context.Context) error {
	client := twitch.NewClient(b.cfg.Username, b.cfg.OAuthToken)
	logger := slog.Default().With("component", "chat", "channel", b.cfg.Channel)
	go b.limiter.cleanupLoop(ctx)

	client.OnConnect(func() {
		b.setConnected(true)
		logger.Info("twitch chat connected")
	})
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		b.handle(ctx, client, msg)
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			client.Disconnect()
		case <-done:
		}
	}()

	client.Join(b.cfg.Channel)
	err := client.Connect()
	close(done)
	b.setConnected(false)
	b.inflight.Wait()
	if errors.Is(err, twitch.ErrClientDisconnected) || ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *Bot) setConnected(v bool) {
	b.connected.Store(v)
	telemetry.SetChatConnected(v)
}

// handle dispatches one message on its own goroutine. The bot's own lines,
// non-commands and rate-limited users are ignored.
func (b *Bot) handle(ctx context.Context, s sayer, msg twitch.PrivateMessage) {
	if msg.User.Name == b.cfg.Username || !b.handler.IsCommand(msg.Message) {
		return
	}
	if !b.limiter.allow(msg.User.Name) {
		slog.Debug("command rate limited", slog.String("component", "chat"), slog.String("user", msg.User.Name))
		return
	}
	var r bot.Replier = &Replier{say: s, Channel: msg.Channel}
	if b.mirror != nil {
		r = bot.Fanout{r, b.mirror}
	}
	in := bot.Message{Channel: msg.Channel, User: msg.User.Name, Text: msg.Message}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.handler.OnMessage(ctx, in, r)
	}()
}

// Replier posts flattened replies to a channel, split to fit the line limit.
type Replier struct {
	say     sayer
	Channel string
}

// Reply implements bot.Replier.
func (r *Replier) Reply(_ context.Context, m render.Message) error {
	for _, line := range render.Chunks(render.PlainText(m), MaxMessageBytes) {
		r.say.Say(r.Channel, line)
	}
	return nil
}
