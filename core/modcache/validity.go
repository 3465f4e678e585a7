package modcache

import (
	"crypto/sha1"
	"encoding/hex"
)

// Validity is the action required to bring the index up to date.
type Validity int

const (
	Valid Validity = iota
	NeedsUpdate
	NeedsRebuild
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case NeedsUpdate:
		return "needs_update"
	default:
		return "needs_rebuild"
	}
}

// Fingerprint digests a content listing.
func Fingerprint(listing string) string {
	sum := sha1.Sum([]byte(listing))
	return hex.EncodeToString(sum[:])
}

// Flags are the force switches consulted by Classify.
type Flags struct {
	ForceRebuild bool
	ForceUpdate  bool
}

// Classify decides what to do with a persisted document. doc is nil when it
// is missing or could not be decoded.
func Classify(doc *Document, fingerprint string, flags Flags) Validity {
	switch {
	case doc == nil:
		return NeedsRebuild
	case doc.FormatVersion != FormatVersion:
		return NeedsRebuild
	case flags.ForceRebuild:
		return NeedsRebuild
	case doc.GlobalHash != fingerprint:
		return NeedsUpdate
	case flags.ForceUpdate:
		return NeedsUpdate
	default:
		return Valid
	}
}
