package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/urfave/cli/v3"
)

func mapAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	opts, err := app.options(cmd)
	if err != nil {
		return err
	}

	in, err := openInput(cmd.String("input"))
	if err != nil {
		return err
	}
	ids, err := readIdentifiers(in, cmd.Bool("parse"), app.logger)
	in.Close()
	if err != nil {
		return err
	}

	out, err := openOutput(cmd.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()

	o, err := idmapping.New(app.client, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	pw := newPayloadWriter(out, opts.Format)
	for page, err := range o.Run(ctx, ids) {
		if err != nil {
			return fmt.Errorf("mapping failed after %d pages: %w", pw.pages, err)
		}
		if err := pw.WritePage(page.Page.Data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	app.logger.Info().
		Int("identifiers", len(ids)).
		Int("pages", pw.pages).
		Dur("duration", time.Since(start)).
		Msg("Mapping complete")
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}
