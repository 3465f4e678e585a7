package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"content-cache/core/content"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrGroupExists is returned when creating a group twice.
	ErrGroupExists = errors.New("resource group already exists")
	// ErrGroupNotFound is returned for operations on unknown groups.
	ErrGroupNotFound = errors.New("resource group not found")
	// ErrResourceNotFound is returned when no location of a group holds a name.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrClosed is returned when queueing work on a registry that is closing.
	ErrClosed = errors.New("resource registry closed")
)

const queueSize = 64

type location struct {
	path string
	typ  content.BundleType
}

type resource struct {
	bundle content.Bundle
	path   string
}

type group struct {
	global      bool
	locations   []location
	initialised bool
	bundles     []content.Bundle
	index       map[string]resource
}

// GroupStatus describes a registered group.
type GroupStatus struct {
	Name        string `json:"name"`
	Global      bool   `json:"global"`
	Locations   int    `json:"locations"`
	Initialised bool   `json:"initialised"`
	Resources   int    `json:"resources"`
}

// Registry keeps named resource groups backed by bundle locations.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	groups map[string]*group
	logger *zap.Logger

	queue   chan string
	done    chan struct{}
	stopped chan struct{}
	worker  *errgroup.Group
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		groups: make(map[string]*group),
		logger: logger,
	}
}

// Start runs the background initialisation worker until ctx is done or Close is called.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queue != nil {
		return
	}

	queue := make(chan string, queueSize)
	done := make(chan struct{})
	stopped := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-done:
				// finish what is already queued
				for {
					select {
					case name := <-queue:
						r.runQueued(name)
					default:
						return nil
					}
				}
			case name := <-queue:
				r.runQueued(name)
			}
		}
	})
	r.queue = queue
	r.done = done
	r.stopped = stopped
	r.worker = g
}

func (r *Registry) runQueued(name string) {
	if err := r.InitialiseGroup(name); err != nil {
		r.logger.Error("Background initialisation failed", zap.String("group", name), zap.Error(err))
	}
}

// Close stops the worker, waits for queued work and releases every group.
// The queue channel is never closed; senders watch done instead.
func (r *Registry) Close() error {
	r.mu.Lock()
	done, worker := r.done, r.worker
	r.queue, r.done, r.stopped, r.worker = nil, nil, nil, nil
	r.mu.Unlock()

	if done != nil {
		close(done)
		_ = worker.Wait()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, g := range r.groups {
		closeBundles(g)
		delete(r.groups, name)
	}
	return nil
}

// CreateGroup registers an empty group. Global groups are searched by every lookup.
func (r *Registry) CreateGroup(name string, global bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrGroupExists)
	}
	r.groups[name] = &group{global: global}
	return nil
}

// AddLocation appends a bundle location to a group.
func (r *Registry) AddLocation(p string, typ content.BundleType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrGroupNotFound)
	}
	g.locations = append(g.locations, location{path: p, typ: typ})
	return nil
}

// InitialiseGroup opens every location of a group and indexes its files by
// lower-cased base name. The first location holding a name wins. A location
// that cannot be opened fails the whole initialisation.
func (r *Registry) InitialiseGroup(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialise(name)
}

func (r *Registry) initialise(name string) error {
	g, ok := r.groups[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrGroupNotFound)
	}
	if g.initialised {
		return nil
	}

	index := make(map[string]resource)
	var bundles []content.Bundle
	for _, loc := range g.locations {
		b, err := content.Open(content.Ref{Type: loc.typ, Path: loc.path})
		if err != nil {
			for _, opened := range bundles {
				_ = opened.Close()
			}
			return fmt.Errorf("failed to initialise group %s: %w", name, err)
		}
		bundles = append(bundles, b)
		for _, f := range b.List() {
			key := strings.ToLower(path.Base(f.Path))
			if _, exists := index[key]; !exists {
				index[key] = resource{bundle: b, path: f.Path}
			}
		}
	}

	g.bundles = bundles
	g.index = index
	g.initialised = true
	return nil
}

// QueueInitialiseGroup hands a group to the background worker, or
// initialises it inline when no worker runs or the worker has stopped.
// It returns ErrClosed once Close has begun.
func (r *Registry) QueueInitialiseGroup(name string) error {
	r.mu.Lock()
	if _, ok := r.groups[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", name, ErrGroupNotFound)
	}
	queue, done, stopped := r.queue, r.done, r.stopped
	if queue == nil {
		defer r.mu.Unlock()
		return r.initialise(name)
	}
	r.mu.Unlock()

	select {
	case <-done:
		return fmt.Errorf("%s: %w", name, ErrClosed)
	case <-stopped:
		return r.InitialiseGroup(name)
	case queue <- name:
		return nil
	}
}

func (r *Registry) lookup(name, resourceName string) (resource, bool) {
	key := strings.ToLower(path.Base(resourceName))
	if g, ok := r.groups[name]; ok && g.initialised {
		if res, ok := g.index[key]; ok {
			return res, true
		}
	}
	for other, g := range r.groups {
		if other == name || !g.global || !g.initialised {
			continue
		}
		if res, ok := g.index[key]; ok {
			return res, true
		}
	}
	return resource{}, false
}

// ResourceExists reports whether an initialised group, or any global group, holds a name.
func (r *Registry) ResourceExists(name, resourceName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(name, resourceName)
	return ok
}

// OpenResource opens a named resource, initialising the group first if needed.
func (r *Registry) OpenResource(name, resourceName string) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initialise(name); err != nil {
		return nil, err
	}
	res, ok := r.lookup(name, resourceName)
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", resourceName, name, ErrResourceNotFound)
	}
	return res.bundle.Open(res.path)
}

// DestroyGroup releases a group and its open bundles.
func (r *Registry) DestroyGroup(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrGroupNotFound)
	}
	closeBundles(g)
	delete(r.groups, name)
	return nil
}

// Groups returns the status of every group, sorted by name.
func (r *Registry) Groups() []GroupStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GroupStatus, 0, len(r.groups))
	for name, g := range r.groups {
		out = append(out, GroupStatus{
			Name:        name,
			Global:      g.global,
			Locations:   len(g.locations),
			Initialised: g.initialised,
			Resources:   len(g.index),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func closeBundles(g *group) {
	for _, b := range g.bundles {
		_ = b.Close()
	}
	g.bundles = nil
}
