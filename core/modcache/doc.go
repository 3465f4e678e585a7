// Package modcache maintains the persistent index of user content.
//
// A System evaluates the persisted index (mods.cache) against a fingerprint
// of the content roots, then either reuses it, prunes and rescans it, or
// rebuilds it from scratch. Scanning routes every known file through the
// parser registry, inserts the resulting entries into the Store, generates
// thumbnails into the side-cache and soft-deletes exact duplicates before
// the index is written back.
//
// # Validity
//
//   - valid: format version and fingerprint match, no force flag
//   - needs_update: fingerprint differs or force-update is set
//   - needs_rebuild: index missing, malformed, of another format version, or force-rebuild is set
//
// # Resources
//
// Entries are materialized into resource groups on demand through the
// Bridge, which memoizes one group per bundle path. Registration failures
// are logged and still leave the group name on the entry.
//
// # Usage
//
//	sys, err := modcache.NewSystem(cfg.Cache, log, modcache.Options{Provider: registry})
//	if err := sys.Init(ctx); errors.Is(err, modcache.ErrNoContent) {
//	    log.Fatal("No content installed")
//	}
//	entry := sys.Store().Find("rig1.truck")
//	group := sys.LoadResource(entry)
package modcache
