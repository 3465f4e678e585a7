// Package integrity provides health checks over the content cache and its mirrors.
//
// # Checks Provided
//
//   - Index: whether the persisted index exists, decodes strictly and matches the current content.
//   - Thumbnails: side-cache files referenced by entries but absent, and files no entry references.
//   - Storage: the thumbnail bucket exists and holds exactly the local side-cache files.
//   - Database: the catalog mirror table carries every expected column.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/index : Runs the index check.
//   - GET /integrity/thumbnails : Runs the side-cache check (supports ?fix=true).
//   - GET /integrity/storage : Runs the bucket check (supports ?fix=true).
//   - GET /integrity/database : Runs the mirror schema check.
package integrity
