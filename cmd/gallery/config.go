package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	gallery "github.com/facttic/go-gallery"
)

// fileConfig is the optional on-disk configuration. Environment variables
// take precedence over it.
type fileConfig struct {
	APIURL        string `toml:"api_url"`
	Proxy         string `toml:"proxy"`
	InitialAmount int    `toml:"initial_amount"`
	PerPage       int    `toml:"per_page"`
	Moderator     string `toml:"moderator"` // user:pass[:totp_secret]
	SessionDir    string `toml:"session_dir"`
}

// configPath returns the full path to the config file.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "go-gallery", "config.toml"), nil
}

// loadConfig merges the config file, if any, under the environment.
func loadConfig() (gallery.ClientConfig, error) {
	cfg := gallery.ConfigFromEnv()

	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = fc.APIURL
	}
	if cfg.Proxy == "" {
		cfg.Proxy = fc.Proxy
	}
	if cfg.Paging.InitialAmount == 0 {
		cfg.Paging.InitialAmount = fc.InitialAmount
	}
	if cfg.Paging.PerPage == 0 {
		cfg.Paging.PerPage = fc.PerPage
	}
	if cfg.Moderator == nil {
		cfg.Moderator = gallery.ParseModerator(fc.Moderator)
	}
	cfg.SessionDir = fc.SessionDir
	return cfg, nil
}
