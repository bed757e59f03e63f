package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/uniprot-idmapping/pkg/accession"
	"github.com/rs/zerolog"
)

// readIdentifiers reads one identifier per line. Blank lines and lines
// starting with '#' are skipped. With parse set, each line is reduced to
// the UniProt accession it contains and lines without one are dropped.
func readIdentifiers(r io.Reader, parse bool, logger zerolog.Logger) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for line := 1; scanner.Scan(); line++ {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if !parse {
			ids = append(ids, raw)
			continue
		}
		acc, ok := accession.Parse(raw)
		if !ok {
			logger.Warn().Int("line", line).Str("value", raw).Msg("No accession found, skipping")
			continue
		}
		ids = append(ids, acc.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read identifiers: %w", err)
	}
	return ids, nil
}
