// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which reports its name,
// whether it is enabled and how it registers its routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registered features. Register() records a feature and
// LoadAll() loads the enabled ones in registration order.
//
// Features such as 'objects' and 'integrity' are developed and tested in isolation
// and only meet in the start command.
package loader
