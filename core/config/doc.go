// Package config provides configuration management for the content cache.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults are declared next to each partial
// configuration through `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP catalog server settings (port, API key)
//   - Cache: content roots, cache directory, force flags, background loading
//   - Storage: optional S3/MinIO bucket used to mirror thumbnails
//   - Database: optional MySQL/SQLite catalog mirror
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cache.ContentRoots)
package config
