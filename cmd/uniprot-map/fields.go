package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/urfave/cli/v3"
)

func fieldsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	fc, err := idmapping.FetchFields(ctx, app.client)
	if err != nil {
		return fmt.Errorf("fetch fields: %w", err)
	}

	w := cmd.Root().Writer
	if cmd.Bool("all") {
		for _, g := range fc.Groups {
			fmt.Fprintf(w, "%s:\n", g.GroupName)
			for _, f := range g.Items {
				fmt.Fprintf(w, "  %-30s from=%-5t to=%-5t %s\n", f.Name, f.From, f.To, f.DisplayName)
			}
		}
		return nil
	}

	fmt.Fprintf(w, "from: %s\n", strings.Join(fc.From(), ", "))
	fmt.Fprintf(w, "to:   %s\n", strings.Join(fc.To(), ", "))
	return nil
}
