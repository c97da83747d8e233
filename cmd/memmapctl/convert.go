package main

import "fmt"

type ConvertCmd struct {
	Input        string `arg:"" help:"Document to convert." type:"existingfile"`
	Output       string `short:"o" required:"" help:"Destination document." type:"path"`
	Format       string `help:"Input format." default:"auto" enum:"auto,json,toml"`
	OutputFormat string `name:"output-format" help:"Output format." default:"auto" enum:"auto,json,toml"`
}

func (c *ConvertCmd) Run(g *globals) error {
	doc, in, err := load(c.Input, c.Format)
	if err != nil {
		return err
	}
	if err := save(g, doc, c.Output, c.OutputFormat, in); err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stderr, "converted %s -> %s\n", c.Input, c.Output)
	return err
}
