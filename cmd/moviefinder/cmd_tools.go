package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/elee1766/moviefinder/src/agent"
	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/config"
)

// ToolsCmd represents all tool-related commands
type ToolsCmd struct {
	List ToolsListCmd `cmd:"" default:"1" help:"List available tools"`
	Show ToolsShowCmd `cmd:"" help:"Show tool details and parameter schema"`
	Exec ToolsExecCmd `cmd:"" help:"Run a tool directly against the movie provider"`
}

// ToolInfo represents information about a tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ToolsListCmd lists available tools
type ToolsListCmd struct {
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *ToolsListCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	infos, err := listTools(cfg)
	if err != nil {
		return err
	}
	if c.Format == "json" {
		return printJSON(os.Stdout, infos)
	}
	return printToolsTable(os.Stdout, infos)
}

// listTools reports every known tool, disabled ones included.
func listTools(cfg *config.Config) ([]ToolInfo, error) {
	tb, err := offlineToolbox(cfg)
	if err != nil {
		return nil, err
	}

	all := cfg.Tools
	cfg.Tools = nil
	full, err := offlineToolbox(cfg)
	cfg.Tools = all
	if err != nil {
		return nil, err
	}

	infos := make([]ToolInfo, 0, len(full.Tools()))
	for _, t := range full.Tools() {
		info := ToolInfo{Name: t.GetName(), Description: t.GetDescription(), Status: "disabled"}
		if enabled, ok := tb.GetTool(t.GetName()); ok {
			info.Description = enabled.GetDescription()
			info.Status = "enabled"
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// offlineToolbox builds the tool set without a provider, for inspection only.
func offlineToolbox(cfg *config.Config) (*agent.DefaultToolbox, error) {
	return app.NewToolbox(cfg, nil, createLogger(io.Discard, "error", "text"))
}

func printToolsTable(w io.Writer, infos []ToolInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tDESCRIPTION")
	for _, t := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Status, t.Description)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ToolsShowCmd shows tool details
type ToolsShowCmd struct {
	Name string `arg:"" help:"Tool name"`
}

func (c *ToolsShowCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	tb, err := offlineToolbox(cfg)
	if err != nil {
		return err
	}
	tool, ok := tb.GetTool(c.Name)
	if !ok {
		return fmt.Errorf("%w: %w: %s", errUsage, agent.ErrToolNotFound, c.Name)
	}
	return printJSON(os.Stdout, agent.ToChatTool(tool))
}

// ToolsExecCmd runs one tool call
type ToolsExecCmd struct {
	Name string `arg:"" help:"Tool name"`
	Args string `arg:"" optional:"" default:"{}" help:"JSON arguments, e.g. '{\"query\":\"alien\"}'"`
}

func (c *ToolsExecCmd) Run(cli *CLI) error {
	cfg, logger, err := setup(cli)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(c.Args)) {
		return fmt.Errorf("%w: arguments must be valid JSON", errUsage)
	}

	movies, err := app.NewMovieClient(cfg, logger)
	if err != nil {
		return err
	}
	defer movies.Close()

	tb, err := app.NewToolbox(cfg, movies, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	resp, err := tb.ExecuteTool(ctx, &aisdk.ToolCall{
		ID:   "cli",
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      c.Name,
			Arguments: json.RawMessage(c.Args),
		},
	})
	if err != nil {
		return err
	}
	return writeToolResponse(os.Stdout, resp)
}

func writeToolResponse(w io.Writer, resp *aisdk.ToolResponse) error {
	if resp.IsError {
		_, err := fmt.Fprintf(w, "error: %s\n", resp.Content)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n", resp.Content)
	return err
}
