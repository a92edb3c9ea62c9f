package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elee1766/moviefinder/src/config"
)

// ConfigCmd prints the effective configuration with keys masked
type ConfigCmd struct {
	Format string `short:"f" enum:"yaml,json" default:"yaml" help:"Output format"`
	Paths  bool   `help:"List the config files checked when --config is not given"`
}

func (c *ConfigCmd) Run(cli *CLI) error {
	if c.Paths {
		for _, p := range config.UserConfigCandidates() {
			if _, err := os.Stdout.WriteString(p + "\n"); err != nil {
				return err
			}
		}
		return nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	redacted := cfg.Redacted()

	if c.Format == "json" {
		return printJSON(os.Stdout, redacted)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(redacted); err != nil {
		return err
	}
	return enc.Close()
}
