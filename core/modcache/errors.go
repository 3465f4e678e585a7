package modcache

import "errors"

var (
	// ErrNoContent is returned when a load leaves no usable entry.
	ErrNoContent = errors.New("no usable content found")
	// ErrInvalidIndex is returned when the persisted index cannot be decoded.
	ErrInvalidIndex = errors.New("invalid cache index")
	// ErrFormatVersion is returned when the persisted index has another format version.
	ErrFormatVersion = errors.New("cache index format version mismatch")
	// ErrNotFound is returned by lookups that match no entry.
	ErrNotFound = errors.New("entry not found")
	// ErrNotSkin is returned when a skin definition is requested for another kind of entry.
	ErrNotSkin = errors.New("entry is not a skin")
)
