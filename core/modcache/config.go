package modcache

// Config holds configuration for the content cache.
type Config struct {
	// Disabled skips cache evaluation and loading entirely.
	Disabled bool `mapstructure:"disabled" default:"false"`
	// CacheDir holds the index file and the thumbnail side-cache.
	CacheDir string `mapstructure:"cache_dir" default:"cache"`
	// ContentRoots are the user content directories (comma separated in env).
	ContentRoots []string `mapstructure:"content_roots" default:"mods"`
	// ResourcesDir holds the shared managed materials and resource packs.
	ResourcesDir string `mapstructure:"resources_dir" default:"resources"`
	// CategoriesFile optionally replaces the built-in category table.
	CategoriesFile string `mapstructure:"categories_file" default:""`
	// ForceRebuild discards the index on the next evaluation.
	ForceRebuild bool `mapstructure:"force_rebuild" default:"false"`
	// ForceUpdate prunes and rescans even when the fingerprint matches.
	ForceUpdate bool `mapstructure:"force_update" default:"false"`
	// BackgroundLoading queues resource group initialisation instead of running it inline.
	BackgroundLoading bool `mapstructure:"background_loading" default:"false"`
}
