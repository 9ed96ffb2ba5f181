package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/dashscrape/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Cancel the run on interrupt so the browser is closed before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx)
	if ctx.Err() != nil {
		log.Warn().Msg("Interrupt received, shut down gracefully")
		code = 130
	}
	stop()
	os.Exit(code)
}
