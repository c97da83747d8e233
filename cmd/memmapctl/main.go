// Command memmapctl elaborates, converts and validates memory map documents
// and serves the same operations over HTTP.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/danmuck/memmap/internal/logging"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

type CLI struct {
	LogLevel string `name:"log-level" help:"Log level (trace, debug, info, warn, error, off)."`

	Elaborate ElaborateCmd `cmd:"" help:"Resolve addresses and access and validate values."`
	Convert   ConvertCmd   `cmd:"" help:"Re-encode a document without elaborating it."`
	Schema    SchemaCmd    `cmd:"" help:"Export the document JSON schema or validate against it."`
	Symbol    SymbolCmd    `cmd:"" help:"Draw the project icon into the doc directory."`
	Serve     ServeCmd     `cmd:"" help:"Run the HTTP service."`
	Config    ConfigGroup  `cmd:"" help:"Service config templates and validation."`
	Version   VersionCmd   `cmd:"" help:"Print version information."`
}

// globals is bound into every command's Run.
type globals struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("memmapctl failed")
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	g := &globals{stdout: stdout, stderr: stderr}
	parser, err := kong.New(&cli,
		kong.Name("memmapctl"),
		kong.Description("Memory map register elaborator"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Bind(g),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" && !logging.SetLevel(cli.LogLevel) {
		return fmt.Errorf("unknown log level %q", cli.LogLevel)
	}
	return ctx.Run()
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *globals) error {
	_, err := fmt.Fprintf(g.stdout, "memmapctl %s\n", version)
	return err
}
