package bot

import (
	"context"
	"errors"

	"github.com/onnwee/bunt/render"
)

// Fanout sends every reply to each replier in order. All are tried; errors are joined.
type Fanout []Replier

// Reply implements Replier.
func (f Fanout) Reply(ctx context.Context, m render.Message) error {
	var errs []error
	for _, r := range f {
		if r == nil {
			continue
		}
		if err := r.Reply(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Typing forwards the indicator to repliers that support it.
func (f Fanout) Typing(ctx context.Context) error {
	var errs []error
	for _, r := range f {
		if t, ok := r.(Typer); ok {
			if err := t.Typing(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
