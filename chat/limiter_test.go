package chat

import (
	"context"
	"testing"
	"time"

	"github.com/onnwee/bunt/bot"
)

func TestUserLimiterWindow(t *testing.T) {
	l := newUserLimiter(2, time.Minute)
	now := time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.allow("fan") || !l.allow("fan") {
		t.Fatal("first two commands should pass")
	}
	if l.allow("fan") {
		t.Fatal("third command inside the window should be limited")
	}
	if !l.allow("other") {
		t.Fatal("users are limited independently")
	}

	now = now.Add(61 * time.Second)
	if !l.allow("fan") {
		t.Fatal("window should have slid past the old hits")
	}
}

func TestUserLimiterCleanup(t *testing.T) {
	l := newUserLimiter(1, time.Minute)
	now := time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.allow("fan")

	now = now.Add(90 * time.Second)
	l.cleanup()
	if len(l.users) != 1 {
		t.Fatalf("user idle for 1.5 windows should be kept, have %d", len(l.users))
	}
	now = now.Add(90 * time.Second)
	l.cleanup()
	if len(l.users) != 0 {
		t.Fatalf("idle user should be dropped, have %d", len(l.users))
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var l *userLimiter
	if newUserLimiter(0, time.Minute) != nil || newUserLimiter(3, 0) != nil {
		t.Fatal("non-positive settings should disable the limiter")
	}
	for i := 0; i < 10; i++ {
		if !l.allow("fan") {
			t.Fatal("nil limiter must allow")
		}
	}
	l.cleanupLoop(context.Background())
}

func TestHandleDropsRateLimitedCommands(t *testing.T) {
	s := &fakeSayer{}
	b := New(Config{Channel: "braves", Username: "buntbot", RateLimit: 1, RateWindow: time.Minute}, &bot.Handler{}, nil)

	b.handle(context.Background(), s, privmsg("fan", "~help"))
	b.handle(context.Background(), s, privmsg("fan", "~help"))
	b.handle(context.Background(), s, privmsg("other", "~help"))
	b.inflight.Wait()

	if len(s.lines) != 2 {
		t.Fatalf("expected 2 replies, got %d: %q", len(s.lines), s.lines)
	}
}
