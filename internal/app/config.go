package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocumentPath string   // html document to bind
	ConfigPaths  []string // hcl files or directories

	LogFormat string
	LogLevel  string

	Debug       bool // trace pipe dispatch
	PrintConfig bool // print the effective configuration and stop
	Summary     bool // print the pipe summary instead of the document
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocumentPath == "" && !cfg.PrintConfig {
		return nil, errors.New("DocumentPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
