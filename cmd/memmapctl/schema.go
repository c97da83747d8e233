package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/memmap/internal/schema"
)

type SchemaCmd struct {
	Output   string `short:"o" help:"Write the schema here instead of stdout." type:"path"`
	Validate string `help:"Validate this document against the schema instead of exporting it." type:"existingfile"`
	Format   string `help:"Format of the validated document." default:"auto" enum:"auto,json,toml"`
}

func (c *SchemaCmd) Run(g *globals) error {
	if c.Validate != "" {
		doc, _, err := load(c.Validate, c.Format)
		if err != nil {
			return err
		}
		if err := schema.ValidateDocument(doc); err != nil {
			return err
		}
		_, err = fmt.Fprintf(g.stdout, "%s: valid\n", c.Validate)
		return err
	}

	data, err := schema.JSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if c.Output == "" {
		_, err = g.stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
		return fmt.Errorf("schema dir create failed: %w", err)
	}
	return os.WriteFile(c.Output, data, 0o644)
}
