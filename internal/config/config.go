// Package config provides configuration management for changeloger using koanf.
// Configuration is loaded with priority: environment variables (CHANGELOGER_*)
// > project config file (changeloger.config.{json,yaml,yml}) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHANGELOGER_"

// Configuration represents the changeloger configuration.
type Configuration struct {
	// Provider forces the hosting provider (git, github, bitbucket, gitlab).
	// Empty means guess from the repository URL.
	Provider string `koanf:"provider" yaml:"provider" validate:"omitempty,oneof=git github bitbucket gitlab"`
	// Header is the first line of the changelog.
	Header string `koanf:"header" yaml:"header" validate:"required"`
	// FileName is the changelog path relative to the repository. {branch} is
	// replaced with the current branch.
	FileName        string `koanf:"fileName" yaml:"fileName" validate:"required"`
	VersionPrefix   string `koanf:"versionPrefix" yaml:"versionPrefix"`
	VersionBumpType string `koanf:"versionBumpType" yaml:"versionBumpType" validate:"oneof=major minor patch"`
	// StartVersion is the version bumped from when the changelog has no release yet.
	StartVersion    string `koanf:"startVersion" yaml:"startVersion" validate:"required,semver3"`
	PullRequestOnly bool   `koanf:"pullRequestOnly" yaml:"pullRequestOnly"`
	// GroupByType renders one "### title" section per commit type.
	GroupByType bool              `koanf:"groupByType" yaml:"groupByType"`
	Order       []string          `koanf:"order" yaml:"order" validate:"dive,required"`
	TypeTitle   map[string]string `koanf:"typeTitle" yaml:"typeTitle"`

	// Remote names the git remote used for the repository URL, branch
	// detection and pushes.
	Remote string `koanf:"remote" yaml:"remote" validate:"required"`

	// Release workflow toggles. All off by default: a plain run only
	// rewrites the changelog.
	Commit                  bool   `koanf:"commit" yaml:"commit"`
	Tag                     bool   `koanf:"tag" yaml:"tag"`
	Push                    bool   `koanf:"push" yaml:"push"`
	BumpPackage             bool   `koanf:"bumpPackage" yaml:"bumpPackage"`
	// BumpCommand runs with {path} and {version} expanded when BumpPackage is on.
	BumpCommand             string `koanf:"bumpCommand" yaml:"bumpCommand" validate:"required,contains={version}"`
	RequireCleanWorkingTree bool   `koanf:"requireCleanWorkingTree" yaml:"requireCleanWorkingTree"`
	CommitMessage           string `koanf:"commitMessage" yaml:"commitMessage" validate:"required"`
	PushOptions             string `koanf:"pushOptions" yaml:"pushOptions"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// Dir is searched for the project config file (default: current directory).
	Dir string
	// ConfigPath overrides config file discovery.
	ConfigPath string
	// SkipEnv ignores CHANGELOGER_* variables.
	SkipEnv bool
}

// Load loads configuration for the repository at dir.
func Load(dir string) (*Configuration, error) {
	cfg, _, err := LoadWithOptions(LoadOptions{Dir: dir})
	return cfg, err
}

// LoadWithOptions loads configuration and reports the config file used, if any.
func LoadWithOptions(opts LoadOptions) (*Configuration, string, error) {
	k := koanf.New(".")
	loadDefaults(k)

	path := opts.ConfigPath
	if path == "" {
		path = FindProjectConfig(opts.Dir)
	} else if !fileExists(path) {
		return nil, "", &ValidationError{FilePath: path, Message: "config file not found"}
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, "", err
		}
	}

	if !opts.SkipEnv {
		if err := loadEnvironmentConfig(k); err != nil {
			return nil, "", err
		}
	}

	source := path
	if source == "" {
		source = "config"
	}
	cfg, err := finalizeConfig(k, source)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadFile validates and loads a JSON or YAML config file.
func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return &ValidationError{FilePath: path, Message: err.Error()}
		}
	case ".yaml", ".yml":
		if err := ValidateYAMLSyntax(path); err != nil {
			return err
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return &ValidationError{FilePath: path, Message: err.Error()}
		}
	default:
		return &ValidationError{FilePath: path, Message: "unsupported config format (want .json, .yaml or .yml)"}
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration.
func finalizeConfig(k *koanf.Koanf, source string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ValidationError{FilePath: source, Message: fmt.Sprintf("failed to unmarshal config: %v", err)}
	}

	if err := ValidateConfigValues(&cfg, source); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// envTransform converts environment variable names to config keys.
// Single underscores separate camelCase words and double underscores
// separate nesting levels.
// Example: CHANGELOGER_VERSION_PREFIX -> versionPrefix,
// CHANGELOGER_TYPE_TITLE__FEAT -> typeTitle.feat
func envTransform(s string) string {
	parts := strings.Split(strings.TrimPrefix(s, EnvPrefix), "__")
	for i, p := range parts {
		parts[i] = snakeToCamel(p)
	}
	return strings.Join(parts, ".")
}

func snakeToCamel(s string) string {
	words := strings.Split(strings.ToLower(s), "_")
	var sb strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			sb.WriteString(strings.ToUpper(w[:1]) + w[1:])
			continue
		}
		sb.WriteString(w)
	}
	return sb.String()
}

// ReleaseCommitMessage expands {version} in the commit message template.
func (c *Configuration) ReleaseCommitMessage(version string) string {
	return strings.ReplaceAll(c.CommitMessage, "{version}", version)
}
