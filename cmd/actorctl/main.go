package main

import (
	"context"
	"os"

	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/internal/app"
	"github.com/jrsteele09/go-actor-client/internal/config"
	"github.com/jrsteele09/go-actor-client/internal/logger"
)

func main() {
	if err := newRootCmd(newApp).Execute(); err != nil {
		os.Exit(1)
	}
}

func newApp(ctx context.Context, notifier alerts.Notifier) (*app.App, error) {
	c := config.New()
	logger.Init(c.GetLogLevel(), c.GetEnv())
	return app.NewFromConfig(ctx, c, notifier)
}
