// Package config resolves the settings of one azd-infra run.
//
// Values are layered, each layer overriding the previous one: built-in
// defaults, the project's .azd-infra.hcl file, the project's .env file, the
// process environment and finally command line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
)

const (
	// FileName is the optional per-project configuration file.
	FileName = ".azd-infra.hcl"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "AZD_INFRA_"

	DefaultRepository  = "https://github.com/Azure/azure-dev"
	DefaultInfraPath   = "infra"
	DefaultConcurrency = 8
	DefaultCacheSize   = 512
)

// Config holds the resolved settings.
type Config struct {
	Repository  string
	Branch      string
	InfraPath   string
	CloneDir    string
	FromRepo    string
	Concurrency int
	CacheSize   int
}

// hclConfigFile mirrors .azd-infra.hcl. Every attribute is optional.
type hclConfigFile struct {
	Repository  *string `hcl:"repository,optional"`
	Branch      *string `hcl:"branch,optional"`
	InfraPath   *string `hcl:"infra_path,optional"`
	CloneDir    *string `hcl:"clone_dir,optional"`
	FromRepo    *string `hcl:"from_repo,optional"`
	Concurrency *int    `hcl:"concurrency,optional"`
	CacheSize   *int    `hcl:"cache_size,optional"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Repository:  DefaultRepository,
		InfraPath:   DefaultInfraPath,
		CloneDir:    filepath.Join(os.TempDir(), "azd"),
		Concurrency: DefaultConcurrency,
		CacheSize:   DefaultCacheSize,
	}
}

// Load resolves the settings of the project at projectDir. Missing files are
// not an error.
func Load(projectDir string) (Config, error) {
	cfg := Default()

	if err := cfg.applyFile(filepath.Join(projectDir, FileName)); err != nil {
		return Config{}, err
	}

	dotenv, err := readDotEnv(filepath.Join(projectDir, ".env"))
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to inspect %s: %w", filePath, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", filePath, diags)
	}

	var file hclConfigFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", filePath, diags)
	}

	setString(&c.Repository, file.Repository)
	setString(&c.Branch, file.Branch)
	setString(&c.InfraPath, file.InfraPath)
	setString(&c.CloneDir, file.CloneDir)
	setString(&c.FromRepo, file.FromRepo)
	if file.Concurrency != nil {
		c.Concurrency = *file.Concurrency
	}
	if file.CacheSize != nil {
		c.CacheSize = *file.CacheSize
	}
	return nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func readDotEnv(filePath string) (map[string]string, error) {
	values, err := godotenv.Read(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return values, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"REPOSITORY": &c.Repository,
		"BRANCH":     &c.Branch,
		"PATH":       &c.InfraPath,
		"CLONE_DIR":  &c.CloneDir,
		"FROM_REPO":  &c.FromRepo,
	}
	for key, dst := range strs {
		if value, ok := lookup(EnvPrefix + key); ok {
			*dst = value
		}
	}

	ints := map[string]*int{
		"CONCURRENCY": &c.Concurrency,
		"CACHE_SIZE":  &c.CacheSize,
	}
	for key, dst := range ints {
		value, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: must be an integer", EnvPrefix, key, value)
		}
		*dst = n
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Repository) == "" && c.FromRepo == "" {
		return errors.New("invalid configuration: repository must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid configuration: concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid configuration: cache_size must not be negative, got %d", c.CacheSize)
	}

	infra := filepath.ToSlash(c.InfraPath)
	if infra == "" || path.IsAbs(infra) || filepath.IsAbs(c.InfraPath) {
		return fmt.Errorf("invalid configuration: infra_path %q must be relative to the project", c.InfraPath)
	}
	cleaned := path.Clean(infra)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("invalid configuration: infra_path %q must stay inside the project", c.InfraPath)
	}
	return nil
}
