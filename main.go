package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/skill-ladder/app"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/auth"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/config"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "skill-ladder",
		Usage: "multiplayer skill ladder backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			reprojectCommand(),
			tokenCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *observability.Observability, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, observability.New(config.ToObsConfig(cfg)), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, obs, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			return application.Run(ctx)
		},
	}
}

func reprojectCommand() *cli.Command {
	return &cli.Command{
		Name:      "reproject",
		Usage:     "replay a ladder's match history into fresh standings",
		ArgsUsage: "<ladder>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return errors.New("ladder name is required")
			}
			cfg, obs, err := loadConfig(c)
			if err != nil {
				return err
			}
			// Run inline even if the server queues reprojections.
			cfg.Ladder.AsyncReprojection = false

			application, err := app.NewApp(c.Context, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = application.Shutdown(ctx)
			}()

			result, err := application.LadderModule.LadderService.ReprojectLadder(c.Context, name)
			if err != nil {
				return err
			}
			fmt.Printf("Reprojected %s: %d matches, %d players\n", name, result.Matches, result.Players)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "mint a signed identity token (hmac auth mode only)",
		ArgsUsage: "<subject>",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime; defaults to auth.jwt_ttl"},
		},
		Action: func(c *cli.Context) error {
			subject := c.Args().First()
			if subject == "" {
				return errors.New("subject is required")
			}
			cfg, obs, err := loadConfig(c)
			if err != nil {
				return err
			}

			module, err := auth.NewModule(c.Context, cfg, obs, clockwork.NewRealClock())
			if err != nil {
				return err
			}
			ttl := c.Duration("ttl")
			if ttl == 0 {
				ttl = cfg.Auth.JWTTTL
			}
			token, err := module.GetService().IssueToken(c.Context, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
