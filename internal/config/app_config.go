package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/reverie-dev/reverie/internal/constant"
	"github.com/reverie-dev/reverie/internal/reasoning"
	"github.com/reverie-dev/reverie/internal/util"
)

// TagConfig is the on-disk shape of the tag pair list.
type TagConfig struct {
	// Tags is the ordered reasoning tag pair list. Order matters: the
	// first configured pair wins when several literals could apply.
	Tags []reasoning.TagPair `yaml:"tags"`
}

// AppConfig holds the application configuration rooted at a config
// directory (default ~/.reverie).
type AppConfig struct {
	configDir string
	pairs     []reasoning.TagPair
	version   string
}

// Option is a functional option for AppConfig.
type Option func(*AppConfig)

// WithConfigDir overrides the configuration directory.
func WithConfigDir(dir string) Option {
	return func(c *AppConfig) {
		c.configDir = dir
	}
}

// NewAppConfig creates the config directory if needed and loads the tag
// configuration, falling back to the default pairs when no file exists.
func NewAppConfig(opts ...Option) (*AppConfig, error) {
	c := &AppConfig{}
	for _, opt := range opts {
		opt(c)
	}

	if c.configDir == "" {
		home, err := util.GetUserPath()
		if err != nil {
			return nil, err
		}
		c.configDir = filepath.Join(home, constant.DefaultConfigDirName)
	}
	if err := os.MkdirAll(c.configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := c.loadTags(); err != nil {
		return nil, err
	}
	return c, nil
}

// ConfigDir returns the resolved configuration directory.
func (c *AppConfig) ConfigDir() string {
	return c.configDir
}

// SetVersion records the build version for display.
func (c *AppConfig) SetVersion(v string) {
	c.version = v
}

// Version returns the recorded build version.
func (c *AppConfig) Version() string {
	return c.version
}

// TagPairs returns the configured reasoning tag pairs in order.
func (c *AppConfig) TagPairs() []reasoning.TagPair {
	return append([]reasoning.TagPair(nil), c.pairs...)
}

// TagTable builds the immutable tag table from the configured pairs. A
// malformed configuration is rejected here; no partial table is built.
func (c *AppConfig) TagTable() (*reasoning.TagTable, error) {
	table, err := reasoning.NewTagTable(c.pairs)
	if err != nil {
		return nil, fmt.Errorf("invalid tag configuration in %s: %w", constant.GetTagFile(c.configDir), err)
	}
	return table, nil
}

// SaveTagPairs validates and persists a new tag pair list.
func (c *AppConfig) SaveTagPairs(pairs []reasoning.TagPair) error {
	if _, err := reasoning.NewTagTable(pairs); err != nil {
		return fmt.Errorf("refusing to save invalid tag configuration: %w", err)
	}

	data, err := yaml.Marshal(&TagConfig{Tags: pairs})
	if err != nil {
		return fmt.Errorf("failed to marshal tag configuration: %w", err)
	}
	if err := os.WriteFile(constant.GetTagFile(c.configDir), data, 0644); err != nil {
		return fmt.Errorf("failed to write tag configuration: %w", err)
	}
	c.pairs = append([]reasoning.TagPair(nil), pairs...)
	return nil
}

func (c *AppConfig) loadTags() error {
	path := constant.GetTagFile(c.configDir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Debugf("no tag configuration at %s, using defaults", path)
		c.pairs = append([]reasoning.TagPair(nil), reasoning.DefaultTagPairs...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read tag configuration: %w", err)
	}

	var tc TagConfig
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return fmt.Errorf("failed to parse tag configuration %s: %w", path, err)
	}
	c.pairs = tc.Tags
	return nil
}
