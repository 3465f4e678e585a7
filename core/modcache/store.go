package modcache

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Store holds the ordered entry collection. It is not safe for concurrent use.
type Store struct {
	entries []*Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends an entry and assigns it the next sequence number.
func (s *Store) Add(e *Entry) {
	e.Number = len(s.entries) + 1
	s.entries = append(s.entries, e)
}

// Replace swaps the collection for entries, renumbering them 1..N in order.
func (s *Store) Replace(entries []*Entry) {
	s.entries = make([]*Entry, 0, len(entries))
	for _, e := range entries {
		s.Add(e)
	}
}

// Delete soft-deletes the entry with the given number.
func (s *Store) Delete(number int) bool {
	e := s.ByNumber(number)
	if e == nil {
		return false
	}
	e.Deleted = true
	return true
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.entries = nil
}

// All returns every entry, including soft-deleted ones.
func (s *Store) All() []*Entry {
	return s.entries
}

// Entries returns the entries that are not soft-deleted, in order.
func (s *Store) Entries() []*Entry {
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.Deleted {
			out = append(out, e)
		}
	}
	return out
}

// Len counts the entries that are not soft-deleted.
func (s *Store) Len() int {
	n := 0
	for _, e := range s.entries {
		if !e.Deleted {
			n++
		}
	}
	return n
}

// ByNumber returns the live entry with the given sequence number.
func (s *Store) ByNumber(number int) *Entry {
	if number < 1 || number > len(s.entries) {
		return nil
	}
	e := s.entries[number-1]
	if e.Number != number || e.Deleted {
		return nil
	}
	return e
}

// Find looks an entry up by file name, case-insensitively. Exact file names
// are tried first, then names with their UID segment stripped.
func (s *Store) Find(filename string) *Entry {
	for _, e := range s.entries {
		if !e.Deleted && strings.EqualFold(e.Fname, filename) {
			return e
		}
	}
	stripped := StripUID(filename)
	for _, e := range s.entries {
		if !e.Deleted && strings.EqualFold(e.FnameWithoutUID, stripped) {
			return e
		}
	}
	return nil
}

// Contains reports whether a live entry was read from fname in bundlePath.
func (s *Store) Contains(fname, bundlePath string) bool {
	for _, e := range s.entries {
		if !e.Deleted && e.Fname == fname && e.BundlePath == bundlePath {
			return true
		}
	}
	return false
}

// ByGUID returns the live entries with the given guid.
func (s *Store) ByGUID(guid string) []*Entry {
	guid = strings.ToLower(strings.TrimSpace(guid))
	var out []*Entry
	for _, e := range s.entries {
		if !e.Deleted && e.GUID == guid {
			out = append(out, e)
		}
	}
	return out
}

// UsableSkins returns the skin entries applicable to a vehicle guid.
func (s *Store) UsableSkins(guid string) []*Entry {
	var out []*Entry
	for _, e := range s.ByGUID(guid) {
		if e.IsSkin() {
			out = append(out, e)
		}
	}
	return out
}

// SkinByName returns the first skin entry with the given display name.
func (s *Store) SkinByName(name string) *Entry {
	for _, e := range s.entries {
		if !e.Deleted && e.IsSkin() && strings.EqualFold(e.DisplayName, name) {
			return e
		}
	}
	return nil
}

// PrettyName returns the display name of the entry for filename, or filename itself.
func (s *Store) PrettyName(filename string) string {
	if e := s.Find(filename); e != nil {
		return e.DisplayName
	}
	return filename
}

type displayNames []*Entry

func (d displayNames) String(i int) string { return d[i].DisplayName }
func (d displayNames) Len() int            { return len(d) }

// Search ranks live entries by fuzzy match of query against their display
// name. An empty query returns every live entry. limit <= 0 means no limit.
func (s *Store) Search(query string, limit int) []*Entry {
	live := s.Entries()
	var out []*Entry

	if strings.TrimSpace(query) == "" {
		out = live
	} else {
		for _, m := range fuzzy.FindFrom(query, displayNames(live)) {
			out = append(out, live[m.Index])
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
