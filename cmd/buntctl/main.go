// Command buntctl runs bot commands from a terminal against the live upstreams
// and inspects the command log. Replies print as plain text or as JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onnwee/bunt/bot"
	"github.com/onnwee/bunt/config"
	"github.com/onnwee/bunt/db"
	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/render"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	if err := rootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what the subcommands share. Nil hooks fall back to config.Load.
type app struct {
	jsonOut    bool
	newHandler func() (*bot.Handler, error)
	openLog    func(ctx context.Context) (recentLog, func(), error)
}

type recentLog interface {
	Recent(ctx context.Context, limit int) ([]bot.CommandRecord, error)
}

func (a *app) handler() (*bot.Handler, error) {
	if a.newHandler != nil {
		return a.newHandler()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return bot.New(bot.Options{
		Prefix:          cfg.CommandPrefix,
		TeamID:          cfg.TeamID,
		Fetcher:         fetch.New(cfg.RetryPolicy()),
		StatsAPIBaseURL: cfg.StatsAPIBaseURL,
		SavantBaseURL:   cfg.SavantBaseURL,
	}), nil
}

func (a *app) commandLog(ctx context.Context) (recentLog, func(), error) {
	if a.openLog != nil {
		return a.openLog(ctx)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	database, err := db.Connect(ctx, cfg.DBDsn)
	if err != nil {
		return nil, nil, err
	}
	return &db.CommandLog{DB: database}, func() { _ = database.Close() }, nil
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "buntctl",
		Short:         "Run bunt chat commands from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print replies as JSON messages instead of plain text")

	cmd.AddCommand(
		verbCmd(a, "ev", "Latest batted ball of the live game", cobra.NoArgs),
		verbCmd(a, "st [al|nl] [west|east|central]", "Division standings", cobra.MaximumNArgs(2)),
		verbCmd(a, "wc [al|nl]", "Wild card standings", cobra.MaximumNArgs(1)),
		verbCmd(a, "sav <player name|id>", "Statcast percentile rankings", cobra.MinimumNArgs(1)),
		verbCmd(a, "help", "Command summary", cobra.NoArgs),
		askCmd(a),
		logCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "buntctl version %s\n", version)
			},
		},
	)
	return cmd
}

// verbCmd maps a subcommand onto the chat command of the same name.
func verbCmd(a *app, use, short string, argsCheck cobra.PositionalArgs) *cobra.Command {
	verb, _, _ := strings.Cut(use, " ")
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, strings.Join(append([]string{verb}, args...), " "))
		},
	}
}

func askCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <chat line>",
		Short: "Dispatch a raw chat line, with or without the command prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, strings.Join(args, " "))
		},
	}
}

func logCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recently handled commands from the command log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			l, closeFn, err := a.commandLog(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			recs, err := l.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, recs)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tVERB\tOUTCOME\tDURATION\tUSER\tCHANNEL")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.At.UTC().Format(time.RFC3339), r.Verb, r.Outcome, r.Duration, r.User, r.Channel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of rows to show")
	return cmd
}

func (a *app) dispatch(cmd *cobra.Command, line string) error {
	h, err := a.handler()
	if err != nil {
		return err
	}
	prefix := h.Prefix
	if prefix == "" {
		prefix = bot.DefaultPrefix
	}
	if !strings.HasPrefix(line, prefix) {
		line = prefix + line
	}
	r := &stdoutReplier{out: cmd.OutOrStdout(), status: cmd.ErrOrStderr(), json: a.jsonOut}
	outcome, err := h.Dispatch(cmd.Context(), bot.Message{Channel: "terminal", User: os.Getenv("USER"), Text: line}, r)
	if err != nil {
		return err
	}
	if !r.replied {
		fmt.Fprintf(r.status, "no reply (%s)\n", outcome)
	}
	return nil
}

// stdoutReplier prints replies. It implements bot.Replier and bot.Typer.
type stdoutReplier struct {
	out     io.Writer
	status  io.Writer
	json    bool
	replied bool
}

func (r *stdoutReplier) Reply(_ context.Context, m render.Message) error {
	r.replied = true
	if r.json {
		return writeJSON(r.out, m)
	}
	_, err := fmt.Fprintln(r.out, plain(m))
	return err
}

func (r *stdoutReplier) Typing(context.Context) error {
	_, err := fmt.Fprintln(r.status, "working...")
	return err
}

// plain renders m for a terminal. Fenced content keeps its line breaks.
func plain(m render.Message) string {
	var b strings.Builder
	if m.Content != "" {
		b.WriteString(strings.Trim(m.Content, "`\n"))
	}
	for _, e := range m.Embeds {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if e.Title != "" {
			b.WriteString(e.Title + "\n")
		}
		if e.Description != "" {
			b.WriteString(e.Description + "\n")
		}
		for _, f := range e.Fields {
			b.WriteString(f.Name + ": " + f.Value + "\n")
		}
	}
	return strings.TrimRight(strings.NewReplacer("***", "", "**", "", "`", "").Replace(b.String()), "\n")
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
