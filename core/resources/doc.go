// Package resources implements the resource provider the content cache
// materializes bundles into.
//
// A Registry holds named groups. Each group lists bundle locations (directory
// trees or zip archives); initialising a group opens them and builds a flat,
// case-insensitive name index. Global groups are visible from every lookup.
//
// Initialisation can run inline (InitialiseGroup) or be queued to a
// background worker started with Start and stopped with Close.
package resources
