package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/walletmeta/internal/buildinfo"
	"github.com/dmitrijs2005/walletmeta/internal/client/cli"
	"github.com/dmitrijs2005/walletmeta/internal/client/config"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewLogger(cfg.LogFormat, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
