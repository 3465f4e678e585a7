// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the thumbnail
// mirror can be unit tested with the mocks in core/storage/mocks.
//
// # Mirror
//
// Mirror copies side-cache thumbnails to <bucket>/<prefix>/<name>. It is
// optional: the cache engine treats upload failures as best-effort and only
// logs them.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	mirror := storage.NewMirror(client, cfg.Storage.Bucket, cfg.Storage.Prefix)
//	err = mirror.Upload(ctx, "pack_rig.truck.mini.png", data)
package storage
