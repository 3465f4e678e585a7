// Package catalog serves the content index over HTTP.
//
// # Routes
//
//	GET  /catalog?q=&limit=      list or fuzzy search entries
//	GET  /catalog/:number        one entry
//	GET  /catalog/file/:filename lookup by file name (UID segments ignored)
//	GET  /catalog/skins/:guid    skins usable on a vehicle
//	GET  /catalog/:number/skin   skin definition of a skin entry
//	GET  /catalog/:number/thumbnail side-cache thumbnail, local or mirrored
//	POST /catalog/:number/load   materialize the entry's bundle
//	POST /catalog/refresh        re-evaluate the index (rebuild=true forces a rebuild)
//
// When a database is configured every refresh replaces the rows of the
// content_entries table with the live entries (see Sync).
package catalog
