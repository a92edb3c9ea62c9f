package main

import (
	"os"

	"github.com/alecthomas/kong"
)

var version = "dev"

// CLI represents the main CLI structure
type CLI struct {
	Config    string `short:"c" env:"MOVIEFINDER_CONFIG" type:"path" help:"Config file (JSON or YAML)"`
	LogLevel  string `env:"MOVIEFINDER_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string `enum:",text,json" default:"" help:"Log format (text, json)"`
	Model     string `short:"m" help:"Reasoning model, e.g. openai/gpt-4o-mini"`
	MaxSteps  int    `help:"Reasoning step budget per message"`
	Storage   string `enum:",memory,sqlite" default:"" help:"Conversation memory backend"`
	DBPath    string `name:"db" type:"path" help:"SQLite database path"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API"`
	Chat    ChatCmd    `cmd:"" default:"1" help:"Interactive chat (default)"`
	Prompt  PromptCmd  `cmd:"" help:"Ask a single question"`
	MCP     MCPCmd     `cmd:"" name:"mcp" help:"Serve the movie tools over MCP stdio"`
	Tools   ToolsCmd   `cmd:"" help:"Inspect and run movie tools"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Show    ConfigCmd  `cmd:"" name:"config" help:"Show the effective configuration"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("moviefinder"),
		kong.Description("Conversational movie recommendations powered by TMDB and OpenRouter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *kong.Context) error {
	_, err := ctx.Stdout.Write([]byte("moviefinder " + version + "\n"))
	return err
}
