// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query). Disabled when no key is configured.
//   - rayid: tags every request with a ray id (uuid), stored in the "ray_id" local and
//     echoed in the X-Ray-ID response header so logger.WithRayID can pick it up.
package middleware
