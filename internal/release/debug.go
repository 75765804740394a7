package release

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/changeloger/changeloger/internal/changelog"
	"github.com/changeloger/changeloger/internal/commit"
	"github.com/changeloger/changeloger/internal/config"
	"github.com/changeloger/changeloger/internal/git"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DebugMode selects where the state of a run is dumped.
type DebugMode string

const (
	DebugOff   DebugMode = ""
	DebugPrint DebugMode = "print"
	DebugFile  DebugMode = "file"
)

// ParseDebugMode validates a --debug value.
func ParseDebugMode(s string) (DebugMode, error) {
	switch m := DebugMode(s); m {
	case DebugOff, DebugPrint, DebugFile:
		return m, nil
	default:
		return DebugOff, fmt.Errorf("unknown debug mode %q (want print or file)", s)
	}
}

// Snapshot is the state of a run as far as it got.
type Snapshot struct {
	RunID    string                `yaml:"run_id"`
	Dir      string                `yaml:"dir"`
	Config   *config.Configuration `yaml:"config"`
	Metadata git.Metadata          `yaml:"metadata"`
	Range    git.Range             `yaml:"range"`
	Document *DocumentState        `yaml:"document,omitempty"`
	Next     string                `yaml:"next_tag,omitempty"`
	Records  []commit.Record       `yaml:"records,omitempty"`
	Releases []changelog.Release   `yaml:"releases,omitempty"`
	Error    string                `yaml:"error,omitempty"`
}

// DocumentState is the debug view of a changelog.Document.
type DocumentState struct {
	Path          string `yaml:"path"`
	Created       bool   `yaml:"created"`
	LatestVersion string `yaml:"latest_version"`
	PreviousTag   string `yaml:"previous_tag,omitempty"`
	LatestCommit  string `yaml:"latest_commit,omitempty"`
}

func documentState(doc *changelog.Document) *DocumentState {
	return &DocumentState{
		Path:          doc.Path,
		Created:       doc.Created,
		LatestVersion: doc.LatestVersion.String(),
		PreviousTag:   doc.PreviousTag(),
		LatestCommit:  doc.LatestCommit,
	}
}

// newRunID returns "YYYYMMDD_HHMMSS_xxxxxxxx".
func newRunID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102_150405"), uuid.New().String()[:8])
}

// DebugFileName is the dump file name for a run.
func DebugFileName(runID string) string {
	return "changeloger-debug-" + runID + ".yaml"
}

// writeSnapshot dumps snap according to mode. DebugPrint writes a YAML
// document to w; DebugFile writes it next to the changelog in dir and returns
// the path.
func writeSnapshot(snap *Snapshot, mode DebugMode, dir string, w io.Writer) (string, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling debug state: %w", err)
	}

	switch mode {
	case DebugPrint:
		if _, err := fmt.Fprintf(w, "---\n%s", data); err != nil {
			return "", fmt.Errorf("printing debug state: %w", err)
		}
		return "", nil
	case DebugFile:
		path := filepath.Join(dir, DebugFileName(snap.RunID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("writing debug state: %w", err)
		}
		return path, nil
	default:
		return "", nil
	}
}
