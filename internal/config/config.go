// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the secrets file and the YAML config file and
// merges them with CLI flags into a single FetchConfig. Precedence is
// flag over config-file value over built-in default; the loader reads
// files but never writes them.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfgrab/pkg/types"
)

// Built-in defaults, overridable by the config file and flags.
const (
	DefaultFiletype   = "pdf"
	DefaultDestFolder = "downloads"
	DefaultStart      = 1
	DefaultStop       = 10000
	DefaultTimeout    = 60 * time.Second
	DefaultDelay      = 1 * time.Second
	DefaultUserAgent  = "pdfgrab/0.1"
)

// ConfigError reports an unusable configuration: a missing or malformed
// secrets or config file, or a merged configuration that fails
// validation. It is fatal and raised before any network call.
type ConfigError struct {
	// File is the offending file, when the problem is tied to one.
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config %s: %v", e.File, e.Err)
	}
	return "config: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Secrets holds the Custom Search API credentials.
type Secrets struct {
	APIKey         string `json:"API_KEY"`
	SearchEngineID string `json:"SEARCH_ENGINE_ID"`
}

// LoadSecrets reads the JSON secrets file. A missing file, malformed
// JSON, or a missing or empty key is a *ConfigError.
func LoadSecrets(path string) (Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Secrets{}, &ConfigError{File: path, Err: fmt.Errorf("reading secrets: %w", err)}
	}

	var s Secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return Secrets{}, &ConfigError{File: path, Err: fmt.Errorf("parsing secrets: %w", err)}
	}

	s.APIKey = strings.TrimSpace(s.APIKey)
	s.SearchEngineID = strings.TrimSpace(s.SearchEngineID)
	if s.APIKey == "" {
		return Secrets{}, &ConfigError{File: path, Err: errors.New("missing API_KEY")}
	}
	if s.SearchEngineID == "" {
		return Secrets{}, &ConfigError{File: path, Err: errors.New("missing SEARCH_ENGINE_ID")}
	}
	return s, nil
}

// flagKeys maps viper keys to the CLI flag that overrides them.
var flagKeys = map[string]string{
	"query":          "query",
	"filetype":       "filetype",
	"site":           "site",
	"dest_folder":    "dest-folder",
	"start":          "start",
	"stop":           "stop",
	"referer":        "referer",
	"timeout":        "timeout",
	"download_delay": "delay",
}

// Load reads the secrets file and the YAML config file, layers the
// given flags on top, and returns the validated merged configuration.
// An absent config file is not an error; built-in defaults apply.
func Load(secretPath, configPath string, flags *pflag.FlagSet) (types.FetchConfig, error) {
	secrets, err := LoadSecrets(secretPath)
	if err != nil {
		return types.FetchConfig{}, err
	}

	v := viper.New()
	v.SetDefault("filetype", DefaultFiletype)
	v.SetDefault("dest_folder", DefaultDestFolder)
	v.SetDefault("start", DefaultStart)
	v.SetDefault("stop", DefaultStop)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("download_delay", DefaultDelay)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return types.FetchConfig{}, &ConfigError{File: configPath, Err: fmt.Errorf("reading config: %w", err)}
		}
	}

	v.SetEnvPrefix("PDFGRAB")
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return types.FetchConfig{}, &ConfigError{Err: fmt.Errorf("binding flag %s: %w", name, err)}
				}
			}
		}
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("timeout"),
			UserAgent: DefaultUserAgent,
			Referer:   v.GetString("referer"),
		},
		Query:          v.GetString("query"),
		Filetype:       v.GetString("filetype"),
		Site:           v.GetString("site"),
		APIKey:         secrets.APIKey,
		SearchEngineID: secrets.SearchEngineID,
		DestFolder:     v.GetString("dest_folder"),
		Start:          v.GetInt("start"),
		Stop:           v.GetInt("stop"),
		DownloadDelay:  v.GetDuration("download_delay"),
	}

	if err := cfg.Validate(); err != nil {
		return types.FetchConfig{}, &ConfigError{Err: err}
	}
	return cfg, nil
}

// starter mirrors the config-file schema for the `config init` command.
type starter struct {
	Query      string `yaml:"query"`
	Filetype   string `yaml:"filetype"`
	Site       string `yaml:"site"`
	DestFolder string `yaml:"dest_folder"`
	Referer    string `yaml:"referer,omitempty"`
}

// Starter returns the contents of a starter config file with the
// built-in defaults filled in.
func Starter() ([]byte, error) {
	data, err := yaml.Marshal(starter{
		Query:      "physics notes",
		Filetype:   DefaultFiletype,
		Site:       "example.edu",
		DestFolder: DefaultDestFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling starter config: %w", err)
	}
	header := "# pdfgrab configuration. CLI flags override these values.\n"
	return append([]byte(header), data...), nil
}
