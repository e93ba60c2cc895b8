package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// viper keys for the settings store.
const (
	keyDarkTheme      = "display.dark_theme"
	keyTwentyFourHour = "display.24hr_clock"
	keySplitMode      = "tracking.split_mode"
	keySessionCmd     = "tracking.session_cmd"
	keyNotify         = "tracking.notify"
	keyTickAnimating  = "intervals.animating"
	keyTickIdle       = "intervals.idle"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyTwentyFourHour, false)
	v.SetDefault(keySplitMode, "radio")
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyTickAnimating, "1s")
	v.SetDefault(keyTickIdle, "10s")
}

// load reads the settings file, writing one with defaults on first run.
func load(path string) (*Settings, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading settings file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return nil, fmt.Errorf("writing default settings failed: %w", err)
		}
	}

	var s Settings

	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings failed: %w", err)
	}

	s.PathToConfig = path

	return &s, nil
}
