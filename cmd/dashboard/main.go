// Package main renders a royaltydesk dashboard view in the terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dashboardcmd "github.com/louisbranch/royaltydesk/internal/cmd/dashboard"
	"github.com/louisbranch/royaltydesk/internal/platform/config"
)

func main() {
	cfg, err := dashboardcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[DASHBOARD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = dashboardcmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("Error: %s", dashboardcmd.LocalizeError(cfg.Locale, err))
	}
}
