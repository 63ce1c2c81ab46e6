// Package testutil holds the integration test harness. It writes a document
// and its configuration to a temporary directory, runs the app over them and
// exposes the rendered output.
package testutil
