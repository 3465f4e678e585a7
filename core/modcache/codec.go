package modcache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

// FormatVersion is the index format this build reads and writes.
const FormatVersion = 10

// IndexFileName is the name of the index inside the cache directory.
const IndexFileName = "mods.cache"

// Document is the persisted index.
type Document struct {
	FormatVersion int      `json:"format_version"`
	GlobalHash    string   `json:"global_hash"`
	Entries       []*Entry `json:"entries"`
}

var (
	entryKeys  = jsonKeys(reflect.TypeOf(Entry{}))
	authorKeys = jsonKeys(reflect.TypeOf(Author{}))
)

func jsonKeys(t reflect.Type) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// Encode serializes the live entries in order. Nil slices are written as
// empty arrays so the result always passes Decode.
func Encode(doc Document) ([]byte, error) {
	out := Document{FormatVersion: doc.FormatVersion, GlobalHash: doc.GlobalHash, Entries: make([]*Entry, 0, len(doc.Entries))}
	for _, e := range doc.Entries {
		if e.Deleted {
			continue
		}
		c := *e
		if c.Authors == nil {
			c.Authors = []Author{}
		}
		if c.SectionConfigs == nil {
			c.SectionConfigs = []string{}
		}
		out.Entries = append(out.Entries, &c)
	}
	data, err := json.MarshalIndent(out, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache index: %w", err)
	}
	return data, nil
}

// Decode parses an index. Every entry and author key must be present,
// non-null and of the right type; any violation fails the whole document
// with ErrInvalidIndex. Entries are renumbered 1..N.
func Decode(data []byte) (*Document, error) {
	var raw struct {
		FormatVersion *int              `json:"format_version"`
		GlobalHash    *string           `json:"global_hash"`
		Entries       []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIndex, err)
	}
	if raw.FormatVersion == nil || raw.GlobalHash == nil || raw.Entries == nil {
		return nil, fmt.Errorf("%w: missing format_version, global_hash or entries", ErrInvalidIndex)
	}

	doc := &Document{
		FormatVersion: *raw.FormatVersion,
		GlobalHash:    *raw.GlobalHash,
		Entries:       make([]*Entry, 0, len(raw.Entries)),
	}
	for i, item := range raw.Entries {
		e, err := decodeEntry(item)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidIndex, i, err)
		}
		e.Number = i + 1
		e.GUID = strings.TrimSpace(e.GUID)
		doc.Entries = append(doc.Entries, e)
	}
	return doc, nil
}

func decodeEntry(item json.RawMessage) (*Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return nil, err
	}
	if err := requireKeys(fields, entryKeys); err != nil {
		return nil, err
	}

	var authors []map[string]json.RawMessage
	if err := json.Unmarshal(fields["authors"], &authors); err != nil {
		return nil, fmt.Errorf("authors: %v", err)
	}
	for i, a := range authors {
		if err := requireKeys(a, authorKeys); err != nil {
			return nil, fmt.Errorf("author %d: %v", i, err)
		}
	}

	var e Entry
	if err := json.Unmarshal(item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func requireKeys(fields map[string]json.RawMessage, keys []string) error {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			return fmt.Errorf("missing field %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("null field %q", key)
		}
	}
	return nil
}

// ReadIndex reads and decodes the index file.
func ReadIndex(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIndex, err)
	}
	return Decode(data)
}

// WriteIndex writes data to path through a temporary file and a rename.
func WriteIndex(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}
