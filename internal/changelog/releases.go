package changelog

import (
	"regexp"
	"strings"

	"github.com/changeloger/changeloger/internal/version"
)

// Release is a release section recovered from rendered Markdown.
type Release struct {
	Version version.Version `yaml:"version"`
	// Date is the text after " - " in the header, "" when absent.
	Date    string   `yaml:"date,omitempty"`
	Commits []string `yaml:"commits,omitempty"`
}

var entryHash = regexp.MustCompile("`([0-9a-f]{7,40})`")

// ParseReleases splits content on version headers and collects the commit
// hashes linked under each, newest release first. Lines before the first
// header and headers with another prefix are skipped.
func ParseReleases(content, prefix string) []Release {
	var (
		releases []Release
		current  *Release
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, version.HeaderMarker) {
			v, err := version.ParseHeader(line, prefix)
			if err != nil {
				current = nil
				continue
			}
			r := Release{Version: v}
			if _, date, ok := strings.Cut(line, " - "); ok {
				r.Date = strings.TrimSpace(date)
			}
			releases = append(releases, r)
			current = &releases[len(releases)-1]
			continue
		}
		if current == nil || !strings.HasPrefix(line, "- ") {
			continue
		}
		for _, m := range entryHash.FindAllStringSubmatch(line, -1) {
			current.Commits = append(current.Commits, m[1])
		}
	}
	return releases
}
