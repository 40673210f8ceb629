package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = "sheetswap.yaml"

// envPrefix namespaces CLI settings, e.g. SHEETSWAP_FILL_MISSING=true.
const envPrefix = "SHEETSWAP_"

// Config holds the settings for one convert run.
type Config struct {
	DropDuplicates bool     `koanf:"drop_duplicates"`
	FillMissing    bool     `koanf:"fill_missing"`
	Columns        []string `koanf:"columns"`
	Chart          bool     `koanf:"chart"`
	To             string   `koanf:"to"`
	Out            string   `koanf:"out"`
	MaxFileSize    int64    `koanf:"max_file_size"`
	PreviewRows    int      `koanf:"preview_rows"`
	LogLevel       string   `koanf:"log_level"`
	LogFormat      string   `koanf:"log_format"`
}

func defaults() map[string]any {
	return map[string]any{
		"drop_duplicates": false,
		"fill_missing":    false,
		"chart":           false,
		"to":              "csv",
		"out":             "converted",
		"max_file_size":   int64(50 << 20),
		"preview_rows":    5,
		"log_level":       "warn",
		"log_format":      "text",
	}
}

// LoadConfig merges, lowest precedence first: defaults, the YAML config
// file, SHEETSWAP_ environment variables, and flags set on the command line.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// SHEETSWAP_FILL_MISSING -> fill_missing
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max_file_size must be positive, got %d", cfg.MaxFileSize)
	}
	if cfg.PreviewRows < 1 {
		return nil, fmt.Errorf("preview_rows must be at least 1, got %d", cfg.PreviewRows)
	}
	return &cfg, nil
}
