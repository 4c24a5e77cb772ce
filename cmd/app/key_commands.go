package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/teamvault/cmd/app/commands"
	"github.com/allisson/teamvault/internal/app"
	"github.com/allisson/teamvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-cipher-key",
			Usage: "Generate a new cipher key for secrets at rest",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Wrap the key with this KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
					return commands.RunCreateCipherKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
		{
			Name:  "totp",
			Usage: "Print the current one-time code for a base32 seed",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Base32 TOTP seed",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunTOTP(commands.DefaultIO().Writer, cmd.String("secret"), time.Now())
			},
		},
	}
}
