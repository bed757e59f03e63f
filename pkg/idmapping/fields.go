package idmapping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
)

const fieldsPath = "/configure/idmapping/fields"

// Field is one namespace known to the mapping service.
type Field struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	From        bool   `json:"from"`
	To          bool   `json:"to"`
}

// FieldGroup is a named group of namespaces.
type FieldGroup struct {
	GroupName string  `json:"groupName"`
	Items     []Field `json:"items"`
}

// FieldCatalogue lists the namespaces usable as From and To.
type FieldCatalogue struct {
	Groups []FieldGroup `json:"groups"`
}

// FetchFields retrieves the namespace catalogue.
func FetchFields(ctx context.Context, c *client.Client) (*FieldCatalogue, error) {
	resp, err := c.Get(ctx, fieldsPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, client.NewAPIError(resp)
	}

	var fc FieldCatalogue
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode field catalogue: %w", err)
	}
	return &fc, nil
}

// From returns the source namespaces of the primary group.
func (fc *FieldCatalogue) From() []string {
	return fc.names(func(f Field) bool { return f.From })
}

// To returns the target namespaces of the primary group.
func (fc *FieldCatalogue) To() []string {
	return fc.names(func(f Field) bool { return f.To })
}

// All returns every namespace across all groups.
func (fc *FieldCatalogue) All() []Field {
	var out []Field
	for _, g := range fc.Groups {
		out = append(out, g.Items...)
	}
	return out
}

func (fc *FieldCatalogue) names(keep func(Field) bool) []string {
	if len(fc.Groups) == 0 {
		return nil
	}
	var out []string
	for _, f := range fc.Groups[0].Items {
		if keep(f) {
			out = append(out, f.Name)
		}
	}
	return out
}
