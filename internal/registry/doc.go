// Package registry holds the plugin factories shared by every broker of an
// application.
//
// A Registry is created once at start-up, filled by the compiled-in modules
// (see Module) and handed to each broker, which resolves plugin names against
// it when a plugin is used without an explicit factory. Tests create their own
// registry or call Reset; there is no package-level instance.
package registry
