package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Language string `yaml:"language"`
	MangaDir string `yaml:"manga_dir"`
	Site     string `yaml:"site"`
	TryAll   bool   `yaml:"try_all"`
	Debug    bool   `yaml:"debug"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Language     string
	MangaDir     string
	Site         string
	TryAll       bool
	Cookie       string
	CookieFile   string
	UserAgent    string
}

func DefaultConfig() *Config {
	return &Config{
		Language:   "",
		MangaDir:   ".",
		Site:       "",
		TryAll:     false,
		Debug:      false,
		Cookie:     "",
		CookieFile: "",
		UserAgent:  "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged loads the active profile and overlays the CLI flag
// options on top; with no profile on disk it starts from defaults.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `smd config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.MangaDir != "" {
		c.MangaDir = o.MangaDir
	}
	if o.Site != "" {
		c.Site = o.Site
	}
	if o.TryAll {
		c.TryAll = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.MangaDir == "" {
		c.MangaDir = "."
	}
}

func (c *Config) Print() {
	fmt.Printf(" -manga_dir: %s\n", c.MangaDir)
	if c.Language != "" {
		fmt.Printf(" -language: %s\n", c.Language)
	}
	if c.Site != "" {
		fmt.Printf(" -site: %s\n", c.Site)
	}
	if c.TryAll {
		fmt.Printf(" -try_all: %t\n", c.TryAll)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
}
