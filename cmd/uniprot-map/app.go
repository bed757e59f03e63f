package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/Sternrassler/uniprot-idmapping/pkg/config"
	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/Sternrassler/uniprot-idmapping/pkg/jobstore"
	"github.com/Sternrassler/uniprot-idmapping/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// appContext holds the resources shared by a command.
type appContext struct {
	cfg    *config.Config
	redis  *redis.Client
	client *client.Client
	store  *jobstore.Manager
	logger zerolog.Logger
}

func newAppContext(ctx context.Context, cmd *cli.Command) (*appContext, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Pretty = cfg.LogPretty
	if cmd.IsSet("log-level") {
		logCfg.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-pretty") {
		logCfg.Pretty = cmd.Bool("log-pretty")
	}
	logging.Setup(logCfg)

	app := &appContext{cfg: cfg, logger: logging.NewLogger("cli")}

	rdb, err := cfg.NewRedisClient()
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			app.logger.Warn().Err(err).Msg("Redis unavailable, continuing without job reuse")
			rdb.Close()
		} else {
			app.redis = rdb
			app.store = jobstore.NewManager(rdb)
			app.logger.Info().Msg("Connected to Redis")
		}
	}

	app.client, err = client.New(cfg.ClientConfig(app.redis))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	return app, nil
}

// options returns the run options with command flags applied.
func (a *appContext) options(cmd *cli.Command) (idmapping.Options, error) {
	run := &a.cfg.Run
	if cmd.IsSet("mode") {
		run.Mode = cmd.String("mode")
	}
	if cmd.IsSet("from") {
		run.From = cmd.String("from")
	}
	if cmd.IsSet("to") {
		run.To = cmd.String("to")
	}
	if cmd.IsSet("format") {
		run.Format = cmd.String("format")
	}
	if cmd.IsSet("fields") {
		run.Fields = cmd.String("fields")
	}
	if cmd.IsSet("include-isoform") {
		run.IncludeIsoform = cmd.Bool("include-isoform")
	}
	if cmd.IsSet("segment-size") {
		run.SegmentSize = cmd.Int("segment-size")
	}
	if cmd.IsSet("poll-interval") {
		run.PollInterval = cmd.Duration("poll-interval")
	}
	if cmd.IsSet("max-wait") {
		run.MaxWait = cmd.Duration("max-wait")
	}
	if cmd.IsSet("on-failure") {
		run.OnJobFailure = cmd.String("on-failure")
	}
	return a.cfg.Options(a.store)
}

func (a *appContext) Close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
