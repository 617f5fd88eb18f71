package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "smartscheduler",
		Usage: "availability and booking backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				EnvVars: []string{"SCHEDULER_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background jobs",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "create-host",
				Usage: "register a host account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"HOST_PASSWORD"}},
				},
				Action: createHost,
			},
			{
				Name:  "create-menu",
				Usage: "publish a meeting type for a workspace",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "workspace", Required: true},
					&cli.StringFlag{Name: "slug", Required: true},
					&cli.StringFlag{Name: "title", Required: true},
					&cli.IntFlag{Name: "duration", Value: 60},
					&cli.StringFlag{Name: "method", Value: "any", Usage: "and or or"},
					&cli.StringSliceFlag{Name: "host", Required: true, Usage: "host id, repeat in priority order"},
				},
				Action: createMenu,
			},
			{
				Name:  "slots",
				Usage: "print the bookable slots for a date",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
					&cli.StringFlag{Name: "host"},
					&cli.StringFlag{Name: "org"},
					&cli.StringFlag{Name: "menu"},
					&cli.IntFlag{Name: "duration"},
					&cli.StringFlag{Name: "method"},
				},
				Action: printSlots,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
