// Package content discovers and reads content bundles.
//
// A bundle is either a directory directly below a content root or a zip
// archive (*.zip, *.skinzip) anywhere below it. Bundles are referenced by a
// Ref and only opened on demand; an open Bundle exposes a flat, slash
// separated file namespace regardless of its storage.
//
// The Scanner yields the recognised content files (vehicles, terrains,
// skins) of each bundle, and ListAllUserContent produces the name listing
// the cache fingerprint is computed from.
package content
