package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kungul/scraper/internal/cli"
)

func main() {
	// Interrupts cancel the run context; the scrape command stops after the
	// current product and still reports what it wrote.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
