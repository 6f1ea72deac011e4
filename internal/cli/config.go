package cli

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// duration wraps time.Duration so TOML config accepts "15m" strings.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ServeConfig is the TOML configuration for the serve command.
type ServeConfig struct {
	Listen    string `toml:"listen"`
	DataDir   string `toml:"data_dir"`
	StaticDir string `toml:"static_dir"`
	AssetBase string `toml:"asset_base"`

	// Cache selects the tile cache backend: "memory", "redis" or "none".
	Cache     string   `toml:"cache"`
	RedisAddr string   `toml:"redis_addr"`
	CacheTTL  duration `toml:"cache_ttl"`

	AllowAllOrigins bool `toml:"allow_all_origins"`
}

// DefaultServeConfig returns the configuration used when no file is
// given.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Listen:    ":8080",
		Cache:     "memory",
		RedisAddr: "localhost:6379",
		CacheTTL:  duration{15 * time.Minute},
	}
}

// LoadServeConfig reads a TOML config file over the defaults.
func LoadServeConfig(path string) (ServeConfig, error) {
	cfg := DefaultServeConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return ServeConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ServeConfig{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
