package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/executor"
	"github.com/elee1766/moviefinder/src/session"
)

// PromptCmd represents the single prompt command
type PromptCmd struct {
	Text    []string `arg:"" help:"The question to ask"`
	Session string   `short:"s" help:"Session id, to continue a stored conversation"`
	Output  string   `short:"o" enum:"text,json" default:"text" help:"Output format (text, json)"`
	Verbose bool     `short:"v" help:"Print tool calls to stderr"`
}

type promptOutput struct {
	Response  string                    `json:"response"`
	SessionID string                    `json:"session_id"`
	Outcome   string                    `json:"outcome"`
	Steps     int                       `json:"steps"`
	ToolCalls []executor.ToolCallRecord `json:"tool_calls,omitempty"`
}

func (p *PromptCmd) Run(cli *CLI) error {
	text := strings.TrimSpace(strings.Join(p.Text, " "))
	if text == "" {
		return fmt.Errorf("%w: prompt text is required", errUsage)
	}

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

	var cb *executor.Callbacks
	if p.Verbose {
		cb = &executor.Callbacks{
			OnToolResult: func(rec executor.ToolCallRecord) {
				fmt.Fprintf(os.Stderr, "tool %s(%s) took %s\n", rec.Name, rec.Arguments, rec.Duration)
			},
		}
	}

	res, err := a.Sessions.HandleWith(ctx, p.Session, text, cb)
	if err != nil {
		return err
	}

	if p.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(promptOutput{
			Response:  res.Response,
			SessionID: p.sessionID(),
			Outcome:   res.Outcome.String(),
			Steps:     res.Steps,
			ToolCalls: res.ToolCalls,
		})
	}
	fmt.Println(res.Response)
	return nil
}

func (p *PromptCmd) sessionID() string {
	return session.NormalizeID(p.Session)
}
