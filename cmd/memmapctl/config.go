package main

import (
	"fmt"

	"github.com/danmuck/memmap/internal/config"
)

type ConfigGroup struct {
	Init     ConfigInitCmd     `cmd:"" help:"Write a config or document template."`
	Validate ConfigValidateCmd `cmd:"" help:"Load and validate a service config."`
}

type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Destination path." default:"memmapctl.toml" type:"path"`
	Kind  string `help:"Template kind." default:"service" enum:"service,map"`
	Force bool   `help:"Overwrite an existing file."`
}

func (c *ConfigInitCmd) Run(g *globals) error {
	if err := config.WriteTemplate(c.Path, c.Kind, c.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.stdout, "wrote %s template to %s\n", c.Kind, c.Path)
	return err
}

type ConfigValidateCmd struct {
	Path string `arg:"" optional:"" help:"Config to validate." default:"memmapctl.toml" type:"path"`
}

func (c *ConfigValidateCmd) Run(g *globals) error {
	cfg, err := config.LoadServiceConfig(c.Path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stdout, "%s: valid (name=%s addr=%s)\n", c.Path, cfg.Name, cfg.Addr)
	return err
}
