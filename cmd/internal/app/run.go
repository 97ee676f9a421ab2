package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Run is the entrypoint used by cmd/hiring.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run(args []string) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, root := newCLI()
	defer c.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// RunStub is the entrypoint used by cmd/stubapi.
func RunStub() error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	cfg := LoadServerConfig()
	log := NewLogger(nil, cfg.LogLevel, cfg.LogFormat)

	a, err := New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.Run(ctx)
}
