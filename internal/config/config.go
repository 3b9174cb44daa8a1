package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskflow.db"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Edit      string `toml:"edit"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Archive   string `toml:"archive"`
	Search    string `toml:"search"`
	Period    string `toml:"period"`
	Sort      string `toml:"sort"`
	Undo      string `toml:"undo"`
	Redo      string `toml:"redo"`
	Stats     string `toml:"stats"`
	LogTime   string `toml:"log_time"`
	Export    string `toml:"export"`
	Import    string `toml:"import"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	ClearDone string `toml:"clear_done"`
}

type Config struct {
	DBPath             string `toml:"db_path"`
	ExportDir          string `toml:"export_dir"`
	DefaultPeriod      string `toml:"default_period"`
	DefaultSort        string `toml:"default_sort"`
	HistoryLimit       int    `toml:"history_limit"`
	EngineIntervalSecs int    `toml:"engine_interval_secs"`
	Keys               Keymap `toml:"keys"`
}

// ResolveConfigPath prefers the user config dir, falling back to the
// working directory when it cannot be determined.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, "taskflow", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.EngineIntervalSecs <= 0 {
		cfg.EngineIntervalSecs = 60
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:             DefaultDBName,
		ExportDir:          ".",
		DefaultPeriod:      "all",
		DefaultSort:        "date",
		HistoryLimit:       50,
		EngineIntervalSecs: 60,
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Edit:      "e",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Archive:   "x",
			Search:    "/",
			Period:    "p",
			Sort:      "o",
			Undo:      "u",
			Redo:      "r",
			Stats:     "v",
			LogTime:   "t",
			Export:    "E",
			Import:    "I",
			Confirm:   "enter",
			Cancel:    "esc",
			ClearDone: "C",
		},
	}
}
