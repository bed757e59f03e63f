// Package jobstore remembers submitted ID-mapping jobs in Redis so that an
// identical batch submitted again within the job retention window reuses the
// existing job instead of creating a new one.
//
// A job is identified by its namespaces and its identifier set:
//
//	uniprot:job:UniProtKB_AC-ID:UniProtKB:3f9a...c2
//
// The last segment is the SHA-256 of the sorted identifiers, so batch order
// does not matter. Only job ids are stored. Result pages are always fetched
// from the service.
//
// Example usage:
//
//	store := jobstore.NewManager(redisClient)
//	key := jobstore.Key{From: "UniProtKB_AC-ID", To: "UniProtKB", IDs: batch}
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, jobstore.ErrMiss) {
//		// submit and store.Set(ctx, key, &jobstore.Entry{...})
//	}
//
// Entries expire through the Redis TTL derived from Entry.Expires.
package jobstore
