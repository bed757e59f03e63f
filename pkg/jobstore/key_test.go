package jobstore

import (
	"strings"
	"testing"
)

func TestKey_String(t *testing.T) {
	key := Key{From: "UniProtKB_AC-ID", To: "UniProtKB", IDs: []string{"P04637", "P01308"}}
	got := key.String()

	if !strings.HasPrefix(got, "uniprot:job:UniProtKB_AC-ID:UniProtKB:") {
		t.Errorf("String() = %q, missing namespace prefix", got)
	}
	digest := strings.TrimPrefix(got, "uniprot:job:UniProtKB_AC-ID:UniProtKB:")
	if len(digest) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(digest))
	}
}

func TestKey_OrderIndependent(t *testing.T) {
	a := Key{From: "f", To: "t", IDs: []string{"P04637", "P01308", "Q9Y6K9"}}
	b := Key{From: "f", To: "t", IDs: []string{"Q9Y6K9", "P04637", "P01308"}}

	if a.String() != b.String() {
		t.Errorf("keys differ for the same identifier set:\n%s\n%s", a, b)
	}
}

func TestKey_Distinct(t *testing.T) {
	base := Key{From: "f", To: "t", IDs: []string{"P04637"}}

	tests := []struct {
		name  string
		other Key
	}{
		{"different ids", Key{From: "f", To: "t", IDs: []string{"P01308"}}},
		{"different from", Key{From: "g", To: "t", IDs: []string{"P04637"}}},
		{"different to", Key{From: "f", To: "u", IDs: []string{"P04637"}}},
		{"concatenation boundary", Key{From: "f", To: "t", IDs: []string{"P0", "4637"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.String() == tt.other.String() {
				t.Errorf("keys collide: %s", base)
			}
		})
	}
}

func TestKey_DoesNotReorderCallerSlice(t *testing.T) {
	ids := []string{"Q9Y6K9", "P04637"}
	_ = Key{IDs: ids}.String()

	if ids[0] != "Q9Y6K9" {
		t.Errorf("caller slice was sorted in place: %v", ids)
	}
}
