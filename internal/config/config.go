package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const defaultAPIBaseURL = "http://localhost:8000"

// Config holds runtime settings for the client. Precedence, lowest to
// highest: defaults, environment, config file, command-line flags.
type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	DBPath     string `yaml:"db_path"`
}

// Load assembles the config. args is the command line after the program
// name; a --config flag points at an explicit YAML file, otherwise the
// default location is used when present.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("scribe", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	apiBaseURL := flags.String("api-base-url", "", "blog API base URL")
	dbPath := flags.String("db-path", "", "path to the local sqlite database")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL: os.Getenv("SCRIBE_API_BASE_URL"),
		DBPath:     os.Getenv("SCRIBE_DB_PATH"),
	}

	path := *configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		fileCfg, found, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		if !found && explicit {
			return Config{}, fmt.Errorf("config file not found: %s", path)
		}
		if found {
			if fileCfg.APIBaseURL != "" {
				cfg.APIBaseURL = fileCfg.APIBaseURL
			}
			if fileCfg.DBPath != "" {
				cfg.DBPath = fileCfg.DBPath
			}
		}
	}

	if *apiBaseURL != "" {
		cfg.APIBaseURL = *apiBaseURL
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "scribe.db"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	return nil
}

func loadFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, true, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scribe", "config.yaml")
}
