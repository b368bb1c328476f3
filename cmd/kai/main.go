package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	// An interrupted command already said everything worth saying.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "kai:", err)
	}
	os.Exit(1)
}
