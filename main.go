package main

import (
	"log/slog"

	"github.com/ellavondegurechaff/packforge/cmd"
	"github.com/ellavondegurechaff/packforge/packforge/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("PackForge", slog.LevelInfo)))
	cmd.Execute(version, commit)
}
