package modcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"content-cache/core/content"

	"go.uber.org/zap"
)

// Provider registers bundles as loadable resource groups.
type Provider interface {
	CreateGroup(name string, global bool) error
	AddLocation(path string, typ content.BundleType, group string) error
	InitialiseGroup(name string) error
	QueueInitialiseGroup(name string) error
	ResourceExists(group, name string) bool
	OpenResource(group, name string) (io.ReadCloser, error)
	DestroyGroup(name string) error
}

// managedMaterialsDir is the shared material definition location.
const managedMaterialsDir = "managed_materials"

// resourcePacks are added to vehicle groups after the bundle itself.
var resourcePacks = []string{"textures", "materials", "meshes"}

// Bridge materializes entry bundles into resource groups, once per bundle path.
type Bridge struct {
	provider     Provider
	store        *Store
	resourcesDir string
	background   bool
	logger       *zap.Logger

	groups  map[string]string
	counter int
}

// NewBridge creates a loader bridge.
func NewBridge(provider Provider, store *Store, resourcesDir string, background bool, logger *zap.Logger) *Bridge {
	return &Bridge{
		provider:     provider,
		store:        store,
		resourcesDir: resourcesDir,
		background:   background,
		logger:       logger,
		groups:       make(map[string]string),
	}
}

// Provider returns the underlying resource provider.
func (b *Bridge) Provider() Provider {
	return b.provider
}

// Load ensures e's bundle is registered and returns its group name. A failed
// registration still sets and memoizes the group.
func (b *Bridge) Load(e *Entry) string {
	if e.ResourceGroup != "" {
		return e.ResourceGroup
	}
	if group, ok := b.groups[e.BundlePath]; ok {
		e.ResourceGroup = group
		return group
	}

	group := fmt.Sprintf("Mod-%d", b.counter)
	b.counter++

	log := b.logger.With(zap.String("file", e.Fname), zap.String("bundle", e.BundlePath), zap.String("group", group))
	if err := b.register(e, group); err != nil {
		log.Error("Failed to load resource bundle", zap.Error(err))
	} else {
		log.Debug("Loaded resource bundle")
	}

	b.groups[e.BundlePath] = group
	e.ResourceGroup = group
	return group
}

func (b *Bridge) register(e *Entry, group string) error {
	if err := b.provider.CreateGroup(group, e.IsTerrain()); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	if err := b.provider.AddLocation(e.BundlePath, e.BundleType, group); err != nil {
		return fmt.Errorf("add bundle location: %w", err)
	}

	if !e.IsTerrain() {
		b.addShared(group, managedMaterialsDir)
		if !e.IsSkin() {
			for _, pack := range resourcePacks {
				b.addShared(group, pack)
			}
		}
	}

	if b.background {
		if err := b.provider.QueueInitialiseGroup(group); err != nil {
			return fmt.Errorf("queue initialise: %w", err)
		}
		return nil
	}
	if err := b.provider.InitialiseGroup(group); err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	return nil
}

// addShared adds resources_dir/<name>.zip, or the directory of that name, to
// group. A missing pack is logged and ignored.
func (b *Bridge) addShared(group, name string) {
	archive := filepath.Join(b.resourcesDir, name+".zip")
	dir := filepath.Join(b.resourcesDir, name)

	var err error
	switch {
	case fileExists(archive):
		err = b.provider.AddLocation(archive, content.BundleZip, group)
	case dirExists(dir):
		err = b.provider.AddLocation(dir, content.BundleFileSystem, group)
	default:
		err = fmt.Errorf("resource pack %s not found in %s", name, b.resourcesDir)
	}
	if err != nil {
		b.logger.Warn("Failed to add resource pack", zap.String("group", group), zap.String("pack", name), zap.Error(err))
	}
}

// Group returns the memoized group of a bundle path.
func (b *Bridge) Group(bundlePath string) (string, bool) {
	group, ok := b.groups[bundlePath]
	return group, ok
}

// Unload destroys the group of a bundle and forgets it on every entry.
func (b *Bridge) Unload(bundlePath string) error {
	group, ok := b.groups[bundlePath]
	if !ok {
		return nil
	}
	delete(b.groups, bundlePath)
	for _, e := range b.store.All() {
		if e.BundlePath == bundlePath {
			e.ResourceGroup = ""
		}
	}
	if err := b.provider.DestroyGroup(group); err != nil {
		return fmt.Errorf("failed to destroy group %s: %w", group, err)
	}
	return nil
}

// Reset forgets every memoized group without touching the provider.
func (b *Bridge) Reset() {
	b.groups = make(map[string]string)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
