package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/envelope-client/internal/envcall"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := envcall.NewApp(os.Stdout).RunContext(ctx, os.Args)
	if err == nil {
		return
	}

	code := 1
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		code = exit.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "envcall: %s\n", msg)
	}
	stop()
	os.Exit(code)
}
