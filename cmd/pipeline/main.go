package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-worldstats/internal/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from failed output so scripts can tell them apart
func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrStructural):
		return 2
	case errors.Is(err, model.ErrWrite), errors.Is(err, model.ErrLocked):
		return 3
	}
	return 1
}
