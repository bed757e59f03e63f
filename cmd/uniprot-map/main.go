package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "uniprot-map",
		Usage: "Map protein identifiers with the UniProt ID-mapping service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment file path",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
			},
			&cli.BoolFlag{
				Name:  "log-pretty",
				Usage: "human-readable log output (overrides LOG_PRETTY)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "map",
				Usage: "Map identifiers from a file and write the results",
				Flags: append(runFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "file with one identifier per line (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file (- for stdout)",
						Value:   "-",
					},
					&cli.BoolFlag{
						Name:  "parse",
						Usage: "extract UniProt accessions from each line",
					},
				),
				Action: mapAction,
			},
			{
				Name:  "fields",
				Usage: "List the namespaces usable with --from and --to",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "list namespaces of every group",
					},
				},
				Action: fieldsAction,
			},
			{
				Name:  "serve",
				Usage: "Run the mapping HTTP service",
				Flags: append(runFlags(),
					&cli.IntFlag{
						Name:  "port",
						Usage: "listen port",
						Value: 8080,
					},
				),
				Action: serveAction,
			},
		},
	}
}

// runFlags override the UNIPROT_* run settings.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Usage: "sequential or concurrent"},
		&cli.StringFlag{Name: "from", Usage: "source namespace"},
		&cli.StringFlag{Name: "to", Usage: "target namespace"},
		&cli.StringFlag{Name: "format", Usage: "result format (tsv, json, ...)"},
		&cli.StringFlag{Name: "fields", Usage: "comma-separated result columns"},
		&cli.BoolFlag{Name: "include-isoform", Usage: "include isoforms in results"},
		&cli.IntFlag{Name: "segment-size", Usage: "identifiers per job"},
		&cli.DurationFlag{Name: "poll-interval", Usage: "wait between status checks"},
		&cli.DurationFlag{Name: "max-wait", Usage: "give up on a job after this long (0 = never)"},
		&cli.StringFlag{Name: "on-failure", Usage: "abort or continue when a job fails"},
	}
}
