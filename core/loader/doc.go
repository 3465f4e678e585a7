// Package loader provides the feature loading system of the HTTP app.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager holds the registered features. Register adds one, LoadAll mounts
// every enabled feature in registration order and stops at the first failure.
// The 'catalog' and 'integrity' features are registered by the start command.
package loader
