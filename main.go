package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/vexpr/cli"
	"github.com/ardnew/vexpr/log"
)

func main() {
	ctx := context.Background()

	if err := cli.Run(ctx, os.Exit, os.Args[1:]...); err != nil {
		log.ErrorContext(ctx, "vexpr failed", slog.Any("error", err))
		os.Exit(1)
	}
}
