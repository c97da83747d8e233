package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/memmap/internal/config"
	"github.com/danmuck/memmap/internal/server"
	"github.com/rs/zerolog/log"
)

type ServeCmd struct {
	Config string `short:"c" help:"Service config file; defaults and environment apply when it is missing." default:"memmapctl.toml"`
}

func (c *ServeCmd) Run(g *globals) error {
	path := c.Config
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == config.DefaultPath {
		log.Warn().Str("path", path).Msg("service config not found, using defaults")
		path = ""
	}
	cfg, err := config.LoadServiceConfig(path)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
