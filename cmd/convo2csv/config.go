package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/theimaginaryfoundation/convo-flatten/flatten/provider"
)

const (
	envPrefix         = "CONVO2CSV_"
	maxConfigFileSize = 1024 * 1024
)

type Config struct {
	InputPath   string `koanf:"input"`
	SearchDir   string `koanf:"directory"`
	OutputDir   string `koanf:"output_dir"`
	ArrayField  string `koanf:"array_field"`
	RawOnly     bool   `koanf:"raw_only"`
	CleanedOnly bool   `koanf:"cleaned_only"`
	Minimal     bool   `koanf:"minimal"`
	Summarize   int    `koanf:"summarize"`
	Model       string `koanf:"model"`
	APIKey      string `koanf:"openai_api_key"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`

	ConfigPath string `koanf:"-"`
}

func (c Config) Validate() error {
	if c.RawOnly && c.CleanedOnly {
		return errors.New("--raw-only and --cleaned-only are mutually exclusive")
	}
	if c.Summarize < 0 {
		return errors.New("summarize must be >= 0")
	}
	if c.Summarize > 0 && c.Model == "" {
		return errors.New("missing --model")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:     provider.DefaultModel,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// loadConfig layers defaults, the optional YAML file at path and CONVO2CSV_* environment
// variables, in increasing precedence.
//
//	CONVO2CSV_OUTPUT_DIR     -> output_dir
//	CONVO2CSV_OPENAI_API_KEY -> openai_api_key
func loadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.ConfigPath = path
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// applyFlags copies every flag the user set explicitly from flagCfg onto cfg.
func applyFlags(fs *pflag.FlagSet, cfg *Config, flagCfg Config) {
	overrides := map[string]func(){
		"input":        func() { cfg.InputPath = flagCfg.InputPath },
		"directory":    func() { cfg.SearchDir = flagCfg.SearchDir },
		"output":       func() { cfg.OutputDir = flagCfg.OutputDir },
		"array-field":  func() { cfg.ArrayField = flagCfg.ArrayField },
		"raw-only":     func() { cfg.RawOnly = flagCfg.RawOnly },
		"cleaned-only": func() { cfg.CleanedOnly = flagCfg.CleanedOnly },
		"minimal":      func() { cfg.Minimal = flagCfg.Minimal },
		"summarize":    func() { cfg.Summarize = flagCfg.Summarize },
		"model":        func() { cfg.Model = flagCfg.Model },
		"log-level":    func() { cfg.LogLevel = flagCfg.LogLevel },
		"log-format":   func() { cfg.LogFormat = flagCfg.LogFormat },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})
}
