package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// config is the on-disk TOML shape. loadConfig decodes the file over
// defaultConfig, so a field the file leaves out keeps its default and an
// empty config file is equivalent to no config file.
type config struct {
	Port             int    `toml:"port"`
	SnapshotPath     string `toml:"snapshot_path"`
	MaxCacheSize     int    `toml:"max_cache_size"`
	Workers          int    `toml:"workers"`
	SnapshotInterval int    `toml:"snapshot_interval"`
	LogLevel         string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Port:             6379,
		SnapshotPath:     "dump.my_rdb",
		MaxCacheSize:     10000,
		Workers:          0,
		SnapshotInterval: 300,
		LogLevel:         "info",
	}
}

// loadConfig decodes the TOML file at name over the defaults. A name of ""
// is not an error: it simply returns the defaults unchanged, since the
// config file itself is optional.
func loadConfig(name string) (config, error) {
	c := defaultConfig()
	if name == "" {
		return c, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return c, err
	}
	defer f.Close()
	_, err = toml.NewDecoder(f).Decode(&c)
	return c, err
}
