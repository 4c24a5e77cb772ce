package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/teamvault/cmd/app/commands"
	"github.com/allisson/teamvault/internal/app"
	"github.com/allisson/teamvault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	serve := &cli.Command{
		Name:  "server",
		Usage: "Serve the vault API, the metrics endpoint and the outbox worker",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return commands.RunServer(ctx, version)
		},
	}

	migrate := &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations for DB_DRIVER",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			})
		},
	}

	verifyHistory := &cli.Command{
		Name:  "verify-history",
		Usage: "Check the HMAC signature of every item history entry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "item-id", Aliases: []string{"i"}, Usage: "Restrict the check to one item"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			itemID, err := optionalUUID("item-id", cmd.String("item-id"))
			if err != nil {
				return err
			}

			return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
				auditLog, err := container.AuditLog()
				if err != nil {
					return err
				}
				return commands.RunVerifyHistory(
					ctx, auditLog, container.Logger(), commands.DefaultIO().Writer, itemID, cmd.String("format"),
				)
			})
		},
	}

	return []*cli.Command{serve, migrate, verifyHistory}
}
