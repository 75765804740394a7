// Package pkgjson reads package.json metadata and bumps its version through
// an external command.
package pkgjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/changeloger/changeloger/internal/version"
)

// FileName is the package metadata file looked up in the repository root.
const FileName = "package.json"

// Package is the subset of package.json changeloger reads.
type Package struct {
	Path   string `yaml:"path"`
	Exists bool   `yaml:"exists"`

	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
	// Repository is the raw repository field, from either the string or the
	// object form.
	Repository string `yaml:"repository,omitempty"`
}

type manifest struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Repository json.RawMessage `json:"repository"`
}

// Load reads dir/package.json. A missing file yields a Package with
// Exists false.
func Load(dir string) (*Package, error) {
	p := &Package{Path: filepath.Join(dir, FileName)}

	data, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.Path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.Path, err)
	}

	p.Exists = true
	p.Name = m.Name
	p.Version = m.Version
	p.Repository = repositoryField(m.Repository)
	return p, nil
}

// repositoryField accepts "repository": "url" and "repository": {"url": "url"}.
func repositoryField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

// CurrentVersion parses the version field; an empty field reads as 0.0.0.
func (p *Package) CurrentVersion() (version.Version, error) {
	if p.Version == "" {
		return version.Version{}, nil
	}
	return version.FromString(p.Version)
}
