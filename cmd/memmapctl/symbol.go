package main

import (
	"fmt"

	"github.com/danmuck/memmap/internal/symbol"
)

type SymbolCmd struct {
	SourcePath string `short:"s" name:"source-path" help:"Source directory." default:"." type:"path"`
	DocPath    string `short:"d" name:"doc-path" help:"Output directory, created when missing." default:"doc" type:"path"`
}

func (c *SymbolCmd) Run(g *globals) error {
	fmt.Fprintf(g.stdout, "Source: %s, Output %s\n", c.SourcePath, c.DocPath)
	path, err := symbol.Write(c.DocPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stdout, "wrote %s\n", path)
	return err
}
