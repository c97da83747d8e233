package main

import (
	"fmt"
	"time"

	"github.com/danmuck/memmap/internal/codec"
	"github.com/danmuck/memmap/internal/elaborate"
	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/observability"
	"github.com/danmuck/memmap/internal/schema"
	"github.com/dustin/go-humanize"
)

type ElaborateCmd struct {
	Input        string `arg:"" help:"Document to elaborate (.json or .toml)." type:"existingfile"`
	Output       string `short:"o" help:"Write the elaborated document here instead of stdout." type:"path"`
	Format       string `help:"Input format." default:"auto" enum:"auto,json,toml"`
	OutputFormat string `name:"output-format" help:"Output format; auto follows the output extension or the input format." default:"auto" enum:"auto,json,toml"`
	MetricsFile  string `name:"metrics-file" help:"Write elaboration metrics in the prometheus textfile format." type:"path"`
	Validate     bool   `help:"Validate the input against the JSON schema first."`
}

func (c *ElaborateCmd) Run(g *globals) error {
	doc, in, err := load(c.Input, c.Format)
	if err != nil {
		return err
	}
	if c.Validate {
		if err := schema.ValidateDocument(doc); err != nil {
			return err
		}
	}

	start := time.Now()
	sum, err := elaborate.Walk(&doc.Root, doc.Protocol)
	observability.RecordElaboration("cli", elaborate.Outcome(err), sum.Fields, time.Since(start))
	if c.MetricsFile != "" {
		if werr := observability.WriteTextfile(c.MetricsFile); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	if err := save(g, doc, c.Output, c.OutputFormat, in); err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.stderr, summaryLine(doc, sum))
	return err
}

func summaryLine(doc *memmap.Document, sum elaborate.Summary) string {
	name := doc.Protocol.Name
	if name == "" {
		name = doc.Root.Name
	}
	occupied := "nothing"
	if sum.Occupied {
		occupied = fmt.Sprintf("0x%X-0x%X", sum.Low, sum.High)
	}
	return fmt.Sprintf("%s: %s fields (%s leaves), %s in %s, next free 0x%X",
		name,
		humanize.Comma(int64(sum.Fields)),
		humanize.Comma(int64(sum.Leaves)),
		humanize.IBytes(sum.Bytes),
		occupied,
		sum.End,
	)
}

func load(path, format string) (*memmap.Document, codec.Format, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	return codec.LoadFile(path, f)
}

// save writes doc to path, or to stdout when path is empty. An auto format
// follows the path's extension and falls back to the input format.
func save(g *globals, doc *memmap.Document, path, format string, in codec.Format) error {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == codec.FormatAuto {
		if path != "" {
			if detected, derr := codec.DetectFormat(path); derr == nil {
				f = detected
			}
		}
		if f == codec.FormatAuto {
			f = in
		}
	}
	if path == "" {
		return codec.Encode(f, g.stdout, doc)
	}
	return codec.SaveFile(path, f, doc)
}
