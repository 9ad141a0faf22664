package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bahjat/page-speed-tool/internal/cli"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		var appErr *errs.AppError
		msg := err.Error()
		if errors.As(err, &appErr) {
			msg = fmt.Sprintf("%s (%s)", appErr.Message, appErr.Kind)
		}
		fmt.Fprintln(os.Stderr, "error:", msg)
		os.Exit(1)
	}
}
