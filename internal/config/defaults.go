package config

import (
	"strings"

	"github.com/changeloger/changeloger/internal/commit"
	"github.com/changeloger/changeloger/internal/pkgjson"
)

// DefaultTypeTitles maps commit types to changelog section titles.
var DefaultTypeTitles = map[string]string{
	"feat":     "🚀 Features",
	"perf":     "🔥 Performance",
	"fix":      "🩹 Bug Fixes",
	"refactor": "💅 Refactors",
	"docs":     "📖 Documentation",
	"chore":    "🏡 Chore",
	"test":     "✅ Tests",
	"style":    "🎨 Styles",
	"revert":   "⏪ Reverts",
	"other":    "📦 Other Changes",
}

// DefaultOrder is the commit type priority used for classification.
var DefaultOrder = commit.DefaultOrder

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	var sb strings.Builder
	sb.WriteString(`# Changeloger Configuration
# Environment variables override this file: CHANGELOGER_VERSION_PREFIX=v

# Changelog layout
header: "# Changelog"                 # First line of the changelog
fileName: CHANGELOG.md                # Supports {branch}, e.g. CHANGELOG-{branch}.md
groupByType: false                    # Group entries under "### <title>" sections

# Versioning
versionPrefix: v                      # Prefix of release headers and tags
versionBumpType: patch                # Default bump: major | minor | patch
startVersion: 0.0.0                   # Version bumped from when there is no release yet

# Commits
provider: ""                          # git | github | bitbucket | gitlab (empty = guess)
remote: origin                        # Remote for the repository URL and pushes
pullRequestOnly: false                # Only list pull request merges

# Classification order (unknown types are listed last as "other")
order:
`)
	for _, t := range DefaultOrder {
		sb.WriteString("  - " + t + "\n")
	}
	sb.WriteString("\n# Section titles used with groupByType\ntypeTitle:\n")
	for _, t := range append(append([]string{}, DefaultOrder...), commit.OtherType) {
		sb.WriteString("  " + t + ": \"" + DefaultTypeTitles[t] + "\"\n")
	}
	sb.WriteString(`
# Release workflow (all disabled by default)
bumpPackage: false                    # Run bumpCommand on package.json
bumpCommand: "npm --prefix {path} --no-git-tag-version version {version}"
commit: false                         # Commit the changelog (and package.json)
tag: false                            # Create an annotated tag for the release
push: false                           # Push the commit and tag to the remote
requireCleanWorkingTree: true         # Refuse to commit over uncommitted changes
commitMessage: "chore(release): {version}"
pushOptions: "--follow-tags"          # Extra arguments for git push
`)
	return sb.String()
}

// GetDefaults returns the default configuration as flat koanf keys.
func GetDefaults() map[string]interface{} {
	defaults := map[string]interface{}{
		"provider":                "",
		"header":                  "# Changelog",
		"fileName":                "CHANGELOG.md",
		"versionPrefix":           "v",
		"versionBumpType":         "patch",
		"startVersion":            "0.0.0",
		"pullRequestOnly":         false,
		"groupByType":             false,
		"order":                   append([]string(nil), DefaultOrder...),
		"remote":                  "origin",
		"commit":                  false,
		"tag":                     false,
		"push":                    false,
		"bumpPackage":             false,
		"bumpCommand":             pkgjson.DefaultBumpCommand,
		"requireCleanWorkingTree": true,
		"commitMessage":           "chore(release): {version}",
		"pushOptions":             "--follow-tags",
	}
	// Titles are set per key so a config file overriding one title keeps
	// the others.
	for t, title := range DefaultTypeTitles {
		defaults["typeTitle."+t] = title
	}
	return defaults
}
