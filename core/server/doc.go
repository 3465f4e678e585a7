// Package server holds the HTTP server configuration.
//
// The main entry point (cmd/start) builds the Fiber application; this package
// only defines the settings it consumes: the listen port, the API key guarding
// the catalog routes and the request read timeout.
package server
