package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/npm"
)

// fileConfig is the on-disk TOML configuration. Every field is optional;
// zero values fall back to package defaults.
//
// Example:
//
//	[registry]
//	url = "https://registry.npmjs.org"
//	downloads_url = "https://api.npmjs.org/downloads/point/last-week"
//	metadata_timeout = "15s"
//	downloads_timeout = "5s"
//
//	[resolve]
//	max_depth = 10
//	batch_size = 8
//
//	[server]
//	addr = ":8080"
type fileConfig struct {
	Registry registryConfig `toml:"registry"`
	Resolve  resolveConfig  `toml:"resolve"`
	Server   serverConfig   `toml:"server"`
}

type registryConfig struct {
	URL              string   `toml:"url"`
	DownloadsURL     string   `toml:"downloads_url"`
	MetadataTimeout  duration `toml:"metadata_timeout"`
	DownloadsTimeout duration `toml:"downloads_timeout"`
}

type resolveConfig struct {
	MaxDepth  int `toml:"max_depth"`
	BatchSize int `toml:"batch_size"`
}

type serverConfig struct {
	Addr string `toml:"addr"`
}

// duration wraps time.Duration with TOML string parsing ("15s", "2m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// loadConfig reads the TOML config from path. When path is empty it looks
// for depscope.toml in the working directory, then in the user config
// directory; a missing file is not an error and yields the zero config.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, nil
		}
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat("depscope.toml"); err == nil {
		return "depscope.toml"
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "depscope", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// clientConfig converts the registry section into an npm client config.
func (c fileConfig) clientConfig() npm.Config {
	return npm.Config{
		RegistryURL:      c.Registry.URL,
		DownloadsURL:     c.Registry.DownloadsURL,
		MetadataTimeout:  time.Duration(c.Registry.MetadataTimeout),
		DownloadsTimeout: time.Duration(c.Registry.DownloadsTimeout),
	}
}
