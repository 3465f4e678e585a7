// Package parsers extracts metadata records from content definition files.
//
// Each supported extension is bound to a Parser in a Registry. The vehicle
// family shares one line-based parser; terrains (terrn2) and skins have their
// own. A parser returns *ParseError when a file cannot produce any record;
// non-fatal diagnostics travel on Record.Warnings.
package parsers
