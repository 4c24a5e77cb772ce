package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/allisson/teamvault/internal/app"
	"github.com/allisson/teamvault/internal/config"
)

func getCommands(version string) []*cli.Command {
	return append(getSystemCommands(version), getKeyCommands()...)
}

// withContainer loads configuration, builds the container and shuts it down after fn returns.
func withContainer(ctx context.Context, fn func(cfg *config.Config, container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(cfg, container)
}

// optionalUUID parses a flag value, mapping "" to uuid.Nil.
func optionalUUID(name, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return id, nil
}
