package jobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

const keyPrefix = "uniprot:job"

// Key identifies a submission by namespaces and identifier set.
type Key struct {
	// From is the source namespace (e.g. "UniProtKB_AC-ID")
	From string

	// To is the target namespace (e.g. "UniProtKB")
	To string

	// IDs is the submitted batch. Order is irrelevant.
	IDs []string
}

// String generates a deterministic key string.
// Format: uniprot:job:{from}:{to}:{sha256 of sorted ids}
func (k Key) String() string {
	return strings.Join([]string{keyPrefix, k.From, k.To, k.digest()}, ":")
}

func (k Key) digest() string {
	ids := slices.Clone(k.IDs)
	slices.Sort(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
