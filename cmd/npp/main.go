package main

import (
	"context"
	"log"

	"NormPeakPlot/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cli.ExecuteContext(ctx); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}
