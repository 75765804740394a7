package config

import "path/filepath"

// ProjectConfigNames lists the config files searched for, in priority order.
var ProjectConfigNames = []string{
	"changeloger.config.json",
	"changeloger.config.yaml",
	"changeloger.config.yml",
}

// DefaultInitFileName is the file written by `changeloger init`.
const DefaultInitFileName = "changeloger.config.yaml"

// FindProjectConfig returns the first existing config file in dir, or "".
func FindProjectConfig(dir string) string {
	for _, name := range ProjectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}
