// Package hcl provides the HCL implementation of the configuration Loader
// and Encoder defined in the config package.
//
// A configuration file holds top-level attributes and plugin blocks:
//
//	plugin_prefix = "wok-"
//	plugin_class  = null
//	debug         = true
//
//	plugin "greeting" {
//	  use = "value"
//	}
//
// debug is read by the loader itself; every other attribute becomes a broker
// option. Expressions are evaluated without variables or functions.
package hcl
