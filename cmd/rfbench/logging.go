package main

import (
	"github.com/urfave/cli"

	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/observability"
)

var logger = log.New("rfbench")

func setupLogging(ctx *cli.Context) error {
	return observability.ConfigureLogging(ctx.GlobalString("log-level"))
}
