// Package config handles locating and loading the git-ffwd
// configuration file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-tree git-ffwd config file.
	LocalConfigFilename = ".git-ffwd.yaml"
	// EnvConfig overrides the config path when set.
	EnvConfig = "GIT_FFWD_CONFIG"
)

// Config holds file-backed defaults for reconciliation runs. Flags
// override config values; config values override the built-ins.
type Config struct {
	// Backend selects the VCS backend, git or gogit.
	Backend string `yaml:"backend"`
	// Remote overrides the fetch remote. Empty uses the git default.
	Remote string `yaml:"remote"`
	// Fetch makes batch runs fetch before reconciling.
	Fetch bool `yaml:"fetch"`
	// DiffStat attaches change summaries to fast-forwards.
	DiffStat bool `yaml:"diffstat"`
	// Exclude lists branch globs skipped in batch runs.
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns a Config with the built-in defaults applied.
func DefaultConfig() Config {
	return Config{
		Backend:  "git",
		DiffStat: true,
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, the GIT_FFWD_CONFIG env
// var, and finally os.UserConfigDir()/git-ffwd.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "git-ffwd"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolveConfigPath resolves the active config file for cwd.
// Order: explicit override, GIT_FFWD_CONFIG, nearest local dotfile in
// cwd/parents, then the global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for
// .git-ffwd.yaml. It returns an empty string when none is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path. File values are
// applied over the defaults, so absent keys keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = DefaultConfig().Backend
	}
	return &cfg, nil
}

// LoadResolved locates the active config for cwd and loads it. A
// missing file yields the defaults; a missing explicit override is an
// error.
func LoadResolved(override, cwd string) (*Config, string, error) {
	path, err := ResolveConfigPath(override, cwd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) && override == "" {
			def := DefaultConfig()
			return &def, path, nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func isConfigFilePath(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, "config.yaml") || strings.HasSuffix(lower, "config.yml") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
