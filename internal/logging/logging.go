// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/blinklabs-io/fpowd/internal/config"
)

var globalLogger *slog.Logger

func Setup() {
	SetupWriter(os.Stdout)
}

// SetupWriter configures the global JSON logger writing to w
func SetupWriter(w io.Writer) {
	cfg := config.GetConfig()
	// Set level
	level := slog.LevelInfo
	if cfg.Logging.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
			log.Fatalf("error configuring logger: %s", err)
		}
	}
	handler := slog.NewJSONHandler(
		w,
		&slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// Change timestamp key name and use a human readable format
				if len(groups) == 0 && a.Key == slog.TimeKey {
					return slog.String(
						"timestamp",
						a.Value.Time().Format(time.RFC3339),
					)
				}
				return a
			},
		},
	)
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

func GetAccessLogger() *slog.Logger {
	return GetLogger().With("type", "access")
}
