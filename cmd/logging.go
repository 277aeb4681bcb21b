package cmd

import (
	"github.com/achilleasa/turntable/config"
	"github.com/achilleasa/turntable/log"
	"github.com/urfave/cli"
)

var logger = log.New("turntable")

// Apply the configured log level; the -v and -vv flags take precedence.
func setupLogging(ctx *cli.Context, cfg *config.Config) {
	if cfg != nil {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(level)
		}
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
