// Package broker binds plugins to document elements and routes values
// between them.
//
// A Broker owns a pipe table, a set of plugins bound by name and a
// configuration. Init scans a document subtree for elements carrying a
// data-<prefix><plugin> attribute, parses the attribute as a wiring
// descriptor, registers a stage on the declared pipes, calls the plugin's
// factory and validates the controls it returns.
//
// Everything is synchronous. Init stops at the first failing element and
// returns its error; elements bound before it stay bound.
package broker
