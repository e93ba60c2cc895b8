// Package config is responsible for the program settings: file paths, the
// key-value display preferences store, and logger setup.
package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"

	"github.com/ayooluwa/lapse/internal/models"
)

const Version = "v0.3.0"

var (
	configDir      = "lapse"
	configFileName = "config.yml"
	dbFileName     = "lapse.db"
	logFileName    = "lapse.log"
)

func init() {
	if os.Getenv("LAPSE_ENV") == "development" {
		configFileName = "config_dev.yml"
		dbFileName = "lapse_dev.db"
		logFileName = "lapse_dev.log"
	}
}

// Settings represents the display and behaviour preferences loaded from the
// settings store. It carries no accounting state.
type Settings struct {
	Display struct {
		DarkTheme      bool `mapstructure:"dark_theme"`
		TwentyFourHour bool `mapstructure:"24hr_clock"`
	} `mapstructure:"display"`

	Tracking struct {
		// SplitMode is the default accumulation mode on startup.
		SplitMode string `mapstructure:"split_mode"`
		// SessionCmd runs when a session is finished from the tracker.
		SessionCmd string `mapstructure:"session_cmd"`
		Notify     bool   `mapstructure:"notify"`
	} `mapstructure:"tracking"`

	Intervals struct {
		// Animating is the tick cadence while the tracker is foregrounded
		// and visually updating; Idle applies otherwise.
		Animating time.Duration `mapstructure:"animating"`
		Idle      time.Duration `mapstructure:"idle"`
	} `mapstructure:"intervals"`

	PathToConfig string `mapstructure:"-"`
}

// SplitMode resolves the configured default mode, falling back to radio.
func (s *Settings) SplitMode() models.SplitMode {
	m := models.SplitMode(s.Tracking.SplitMode)
	if !m.Valid() {
		return models.ModeRadio
	}

	return m
}

var (
	settings *Settings
	once     sync.Once
)

// DBFilePath returns the path to the session database.
func DBFilePath() string {
	p, err := xdg.DataFile(filepath.Join(configDir, dbFileName))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return p
}

// LogFilePath returns the path to the rotating log file.
func LogFilePath() string {
	p, err := xdg.StateFile(filepath.Join(configDir, logFileName))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return p
}

func configFilePath() string {
	p, err := xdg.ConfigFile(filepath.Join(configDir, configFileName))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return p
}

// Get returns the program settings, loading them from the settings store on
// first use and creating the file with defaults if it does not exist.
func Get() *Settings {
	once.Do(func() {
		s, err := load(configFilePath())
		if err != nil {
			pterm.Error.Printfln("unable to initialise lapse settings: %v", err)
			os.Exit(1)
		}

		settings = s
	})

	return settings
}
