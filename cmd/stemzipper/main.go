package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stemzipper/internal/packerr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if hasMarker(err) {
				fmt.Fprintf(os.Stderr, "hint: %s\n", packerr.Hint(err))
			}
		}
		stop()
		os.Exit(1)
	}
}

func hasMarker(err error) bool {
	for _, marker := range []error{
		packerr.ErrInvalidPath,
		packerr.ErrArchiveWrite,
		packerr.ErrConfiguration,
		packerr.ErrLocked,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}
