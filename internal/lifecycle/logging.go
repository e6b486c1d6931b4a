package lifecycle

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brightloop/acsd/internal/logger"
	"github.com/brightloop/acsd/internal/model"
	"gopkg.in/natefinch/lumberjack.v2"
)

// daemonLogFilename is the rolling log file written into the data
// directory, capped by DaemonConfig.DaemonLogMaxBytes.
const daemonLogFilename = "daemon.log"

// daemonLogMaxBackups bounds how many rotated daemon.log.N files
// lumberjack keeps around once DaemonLogMaxBytes is exceeded.
const daemonLogMaxBackups = 3

// BuildLogger constructs the daemon's slog.Logger from cfg's LogFormat and
// LogLevel, fanning output out to both stdout (so `acsd run` in a terminal
// still shows logs) and a size-capped daemon.log under dataDir. NewApp calls
// this when the caller doesn't supply its own logger.
func BuildLogger(cfg model.DaemonConfig, dataDir string) *slog.Logger {
	lc := logger.DefaultConfig()
	lc.Format = cfg.LogFormat

	var lvl slog.Level
	if cfg.LogLevel != "" {
		if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			lc.Level = lvl
		}
	}

	rolling := &lumberjack.Logger{
		Filename:   filepath.Join(dataDir, daemonLogFilename),
		MaxSize:    maxSizeMB(cfg.DaemonLogMaxBytes),
		MaxBackups: daemonLogMaxBackups,
		Compress:   true,
	}

	w := io.MultiWriter(os.Stdout, rolling)
	return logger.NewLoggerWithWriter(&lc, w)
}

// maxSizeMB converts a byte budget into lumberjack's MaxSize (megabytes),
// rounding up so a sub-1MiB budget still rotates rather than never firing.
func maxSizeMB(maxBytes int64) int {
	const mib = 1 << 20
	if maxBytes <= 0 {
		return 1
	}
	mb := (maxBytes + mib - 1) / mib
	if mb < 1 {
		return 1
	}
	return int(mb)
}
