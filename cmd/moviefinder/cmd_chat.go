package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"

	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/executor"
	"github.com/elee1766/moviefinder/src/memory"
	"github.com/elee1766/moviefinder/src/theme"
)

// ChatCmd starts an interactive conversation
type ChatCmd struct {
	Session string `short:"s" help:"Session id to continue (default: a new session)"`
	Verbose bool   `short:"v" help:"Show tool calls as they happen"`
	Width   int    `help:"Wrap replies at this width (default: terminal width)"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	cfg, logger, err := setup(cli)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := c.Session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	width := c.Width
	if width <= 0 {
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}
	}

	r := &repl{
		chat:      a.Sessions,
		sessionID: sessionID,
		styles:    theme.NewStyles(width),
		verbose:   c.Verbose,
		in:        os.Stdin,
		out:       os.Stdout,
	}
	return r.run(ctx)
}

// chatSession is the part of the session manager the REPL drives.
type chatSession interface {
	HandleWith(ctx context.Context, sessionID, query string, cb *executor.Callbacks) (*executor.Result, error)
	Reset(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]memory.Turn, error)
}

type repl struct {
	chat      chatSession
	sessionID string
	styles    theme.Styles
	verbose   bool
	in        io.Reader
	out       io.Writer
}

const replHelp = "Commands: /reset clears the conversation, /history shows it, /quit exits."

func (r *repl) run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(r.out, r.styles.Note(fmt.Sprintf("Movie Finder (session %s). %s", r.sessionID, replHelp)))
	for {
		fmt.Fprint(r.out, r.styles.UserPrompt())

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, r.styles.Note(replHelp))
			continue
		case "/reset":
			if err := r.chat.Reset(ctx, r.sessionID); err != nil {
				return err
			}
			fmt.Fprintln(r.out, r.styles.Note("Conversation cleared."))
			continue
		case "/history":
			if err := r.printHistory(ctx); err != nil {
				return err
			}
			continue
		}

		// each message is answered before the next prompt
		res, err := r.chat.HandleWith(ctx, r.sessionID, line, r.callbacks())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		fmt.Fprintln(r.out, r.styles.AssistantMessage(res.Response))
		fmt.Fprintln(r.out)
	}
}

func (r *repl) callbacks() *executor.Callbacks {
	if !r.verbose {
		return nil
	}
	return &executor.Callbacks{
		OnToolResult: func(rec executor.ToolCallRecord) {
			line := fmt.Sprintf("  ↳ %s(%s) %s", rec.Name, rec.Arguments, rec.Duration.Round(time.Millisecond))
			fmt.Fprintln(r.out, r.styles.Note(theme.Truncate(line, r.styles.Width)))
		},
	}
}

func (r *repl) printHistory(ctx context.Context) error {
	turns, err := r.chat.History(ctx, r.sessionID)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Fprintln(r.out, r.styles.Note("No messages yet."))
		return nil
	}
	for _, t := range turns {
		if t.Role == memory.RoleUser {
			fmt.Fprintln(r.out, r.styles.UserPrompt()+t.Text)
			continue
		}
		fmt.Fprintln(r.out, r.styles.AssistantMessage(t.Text))
	}
	return nil
}
