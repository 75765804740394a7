package git

import (
	"fmt"
	"strings"

	"github.com/changeloger/changeloger/internal/provider"
)

// MetadataSource is the part of a Repository metadata resolution reads.
type MetadataSource interface {
	CurrentBranch() (string, error)
	RemoteURL(name string) (string, error)
}

// Metadata describes where a repository is hosted.
type Metadata struct {
	Branch    string            `yaml:"branch"`
	RemoteURL string            `yaml:"remote_url,omitempty"`
	RepoURL   string            `yaml:"repo_url,omitempty"`
	Provider  provider.Provider `yaml:"provider"`
}

// ResolveMetadata determines the hosting provider and browsable repository
// URL. A repository URL declared by the package manifest wins over the
// remote; an explicit provider wins over guessing from that URL.
func ResolveMetadata(src MetadataSource, remote, declaredURL string, override provider.Provider) (Metadata, error) {
	branch, err := src.CurrentBranch()
	if err != nil {
		return Metadata{}, err
	}
	remoteURL, err := src.RemoteURL(remote)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Branch: branch, RemoteURL: remoteURL}

	raw := strings.TrimPrefix(strings.TrimSpace(declaredURL), "git+")
	if raw == "" {
		raw = remoteURL
	}

	meta.Provider = override
	if meta.Provider == "" {
		meta.Provider = provider.Guess(raw)
	}
	meta.RepoURL = provider.ToRepoURL(raw, meta.Provider)

	logDebug("[git] metadata: branch=%q provider=%s repo=%q", meta.Branch, meta.Provider, meta.RepoURL)
	return meta, nil
}

// String summarizes the metadata for logs.
func (m Metadata) String() string {
	if m.RepoURL == "" {
		return fmt.Sprintf("%s (no repository URL)", m.Provider)
	}
	return fmt.Sprintf("%s %s", m.Provider, m.RepoURL)
}
