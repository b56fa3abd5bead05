package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/notefold/notefold/pkg/notefold"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := notefold.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
