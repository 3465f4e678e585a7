package modcache

import (
	"context"
	"errors"

	"content-cache/core/content"
	"content-cache/core/parsers"

	"go.uber.org/zap"
)

// Dispatcher routes known files to their parser and inserts the resulting entries.
type Dispatcher struct {
	registry   *parsers.Registry
	store      *Store
	categories *Categories
	thumbnails *Thumbnails
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher inserting into store.
func NewDispatcher(registry *parsers.Registry, store *Store, categories *Categories, thumbnails *Thumbnails, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		store:      store,
		categories: categories,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// AddFile parses f out of b and inserts one entry per record. addTime stamps
// every entry of the current run. Files already present as live entries are
// skipped; parse failures are logged and add nothing. It returns the number
// of entries added.
func (d *Dispatcher) AddFile(ctx context.Context, b content.Bundle, f content.KnownFile, addTime int64) int {
	log := d.logger.With(zap.String("file", f.Path()), zap.String("bundle", f.Bundle.Path))

	if d.store.Contains(f.Name, f.Bundle.Path) {
		log.Debug("Skipping already indexed file")
		return 0
	}

	parser, ok := d.registry.Lookup(f.Ext)
	if !ok {
		log.Debug("No parser registered", zap.String("ext", f.Ext))
		return 0
	}

	rc, err := b.Open(f.Path())
	if err != nil {
		log.Error("Failed to open content file", zap.Error(err))
		return 0
	}
	records, err := parser.Parse(rc, f.Bundle.Name())
	rc.Close()
	if err != nil {
		var perr *parsers.ParseError
		if errors.As(err, &perr) {
			diagnostics := make([]string, len(perr.Messages))
			for i, m := range perr.Messages {
				diagnostics[i] = m.String()
			}
			log.Error("Failed to parse content file", zap.Strings("diagnostics", diagnostics))
		} else {
			log.Error("Failed to parse content file", zap.Error(err))
		}
		return 0
	}

	for _, rec := range records {
		for _, w := range rec.Warnings {
			log.Warn("Parser diagnostic", zap.String("entry", rec.Name), zap.String("diagnostic", w.String()))
		}

		e := fromRecord(rec)
		e.BundleType = f.Bundle.Type
		e.BundlePath = f.Bundle.Path
		e.Fpath = f.Dir
		e.Fname = f.Name
		e.FnameWithoutUID = StripUID(f.Name)
		e.Fext = f.Ext
		e.FileTime = f.ModTime.Unix()
		e.AddTimestamp = addTime
		e.CategoryID, e.CategoryName = d.categories.Resolve(e.CategoryID)
		if e.DisplayName == "" {
			e.DisplayName = "@" + f.Name
		}
		if d.thumbnails != nil {
			e.FileCacheName = d.thumbnails.Generate(ctx, b, e, rec.Thumbnail)
		}

		d.store.Add(e)
	}
	return len(records)
}
