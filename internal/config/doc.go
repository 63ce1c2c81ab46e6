// Package config defines the format-agnostic configuration model of the wok
// command, along with the Loader interface that reads it from disk.
//
// The Model carries the broker options (plugin prefix, marker class and any
// extra keys), the dispatch tracing flag and the plugin bindings. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
