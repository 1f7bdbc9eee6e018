package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/interchain-infra/pkg/commands"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	level := zap.NewAtomicLevel()

	lggr, err := (&logger.Config{Level: zapcore.InfoLevel, AtomicLevel: &level}).New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New(lggr).WithLevel(&level).Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
