/*
Package descriptor parses the value of a plugin wiring attribute.

The format is a slash-separated sequence:

	input/output/arg1,arg2,...

The first token names the pipe the plugin listens on, the second the pipe it
provides. Either may be empty, meaning the plugin has no such side. Everything
after the second slash is re-joined with "/" and read as a comma-separated list
of literals: double-quoted strings with JSON escapes, numbers, true, false and
null. Any other value (objects, arrays, bare words) is rejected.

Arguments are returned as cty values so plugins can convert them to the Go
types they expect with the cty/gocty and cty/convert packages.
*/
package descriptor
