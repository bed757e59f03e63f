// Package accession extracts UniProt accessions and isoform suffixes from
// free-form identifier strings such as protein-group cells of search engine
// exports.
package accession

import (
	"regexp"
	"strings"
)

// pattern follows the UniProt accession format with an optional isoform
// suffix ("-2").
var pattern = regexp.MustCompile(`(?P<accession>[OPQ][0-9][A-Z0-9]{3}[0-9]|[A-NR-Z][0-9](?:[A-Z][A-Z0-9]{2}[0-9]){1,2})(?P<isoform>-\d+)?`)

// Accession is a normalized UniProt accession.
type Accession struct {
	// ID is the bare accession, e.g. "P04637".
	ID string
	// Isoform is the isoform suffix including the dash, e.g. "-2", or "".
	Isoform string
}

// String returns the accession with its isoform suffix.
func (a Accession) String() string {
	return a.ID + a.Isoform
}

// Parse finds the first accession in raw.
func Parse(raw string) (Accession, bool) {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return Accession{}, false
	}
	return Accession{
		ID:      m[pattern.SubexpIndex("accession")],
		Isoform: m[pattern.SubexpIndex("isoform")],
	}, true
}

// ExtractAll splits raw on sep and parses every part.
// Parts without an accession are skipped.
func ExtractAll(raw, sep string) []Accession {
	var out []Accession
	for _, part := range strings.Split(raw, sep) {
		if a, ok := Parse(strings.TrimSpace(part)); ok {
			out = append(out, a)
		}
	}
	return out
}
