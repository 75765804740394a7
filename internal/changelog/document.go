package changelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/changeloger/changeloger/internal/version"
)

// Placeholder is written to a freshly created changelog until the first
// release is rendered.
const Placeholder = "<!-- Generating... -->"

// TagResolver maps a release tag to the short hash of its commit.
type TagResolver interface {
	ResolveTag(name string) (string, error)
}

// LoadOptions locates the changelog and describes its version headers.
type LoadOptions struct {
	// Dir is the repository directory FileName is relative to.
	Dir string
	// FileName may contain {branch}.
	FileName      string
	Branch        string
	VersionPrefix string
	// StartVersion stands in for the latest release when there is none.
	StartVersion version.Version
}

// Path resolves the changelog location.
func (o LoadOptions) Path() string {
	name := strings.ReplaceAll(o.FileName, "{branch}", o.Branch)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// Document is a snapshot of the changelog taken by Load.
type Document struct {
	Path string
	// FullContent is the file as read, "" when the file was just created.
	FullContent string
	// Content is FullContent without its first line.
	Content string
	Lines   []string

	VersionPrefix string
	// LatestVersion is the version in the second line, or the start
	// version when the changelog has no release yet.
	LatestVersion version.Version
	// PrevVersion is nil when the changelog has no release yet.
	PrevVersion *version.Version
	// LatestCommit is the short hash the previous release was tagged at.
	LatestCommit string
	Created      bool
}

// PreviousTag returns the tag of the previous release, or "".
func (d *Document) PreviousTag() string {
	if d.PrevVersion == nil {
		return ""
	}
	return d.PrevVersion.Tag(d.VersionPrefix)
}

// Load reads the changelog, writing the placeholder first when the file does
// not exist. When the previous release tag cannot be resolved the document is
// still returned alongside the error so the caller can roll back.
func Load(opts LoadOptions, resolver TagResolver) (*Document, error) {
	doc := &Document{
		Path:          opts.Path(),
		VersionPrefix: opts.VersionPrefix,
		LatestVersion: opts.StartVersion,
	}

	data, err := os.ReadFile(doc.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(doc.Path, []byte(Placeholder), 0o644); err != nil {
			return nil, fmt.Errorf("creating changelog %s: %w", doc.Path, err)
		}
		doc.Created = true
	case err != nil:
		return nil, fmt.Errorf("reading changelog %s: %w", doc.Path, err)
	default:
		doc.FullContent = string(data)
	}

	doc.Content = removeHeader(doc.FullContent)
	if doc.Content != "" {
		doc.Lines = strings.Split(doc.Content, "\n")
	}

	if len(doc.Lines) > 1 {
		if v, err := version.ParseHeader(strings.TrimSpace(doc.Lines[1]), opts.VersionPrefix); err == nil {
			doc.LatestVersion = v
			doc.PrevVersion = &v
		}
	}

	if doc.PrevVersion != nil {
		hash, err := resolver.ResolveTag(doc.PreviousTag())
		if err != nil {
			return doc, err
		}
		doc.LatestCommit = hash
	}
	return doc, nil
}

// removeHeader drops the first line of content.
func removeHeader(content string) string {
	_, rest, found := strings.Cut(content, "\n")
	if !found {
		return ""
	}
	return rest
}

// NextVersion returns the version the next release gets.
func NextVersion(doc *Document, bump version.BumpKind) version.Version {
	return doc.LatestVersion.Next(bump)
}

// Write replaces the changelog with content.
func Write(doc *Document, content string) error {
	if err := os.WriteFile(doc.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing changelog %s: %w", doc.Path, err)
	}
	return nil
}

// Delete removes the changelog file. A missing file is not an error.
func Delete(doc *Document) error {
	if err := os.Remove(doc.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting changelog %s: %w", doc.Path, err)
	}
	return nil
}

// Rollback deletes the changelog only while it holds no release: the file is
// empty or still the placeholder. Reports whether the file was removed.
func Rollback(doc *Document) (bool, error) {
	data, err := os.ReadFile(doc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading changelog %s: %w", doc.Path, err)
	}

	content := strings.TrimSpace(string(data))
	if content != "" && content != Placeholder {
		return false, nil
	}
	if err := Delete(doc); err != nil {
		return false, err
	}
	return true, nil
}
