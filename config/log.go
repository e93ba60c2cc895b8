package config

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger routes slog output to a rotating file under the state
// directory. Debug level is opt-in via LAPSE_DEBUG.
func InitLogger() {
	level := slog.LevelInfo
	if os.Getenv("LAPSE_DEBUG") != "" {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   LogFilePath(),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
