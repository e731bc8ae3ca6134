package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the process logger from LOG_LEVEL (debug, info, warn,
// error) and LOG_FORMAT (text, json, logfmt) and installs it as the default
// logger. An invalid level is reported as an error together with a usable
// info-level logger.
func NewLogger(w io.Writer, prefix string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          prefix,
	})

	switch strings.ToLower(GetEnv("LOG_FORMAT", "text")) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	var err error
	level, parseErr := log.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if parseErr != nil {
		level = log.InfoLevel
		err = fmt.Errorf("LOG_LEVEL: %w", parseErr)
	}
	logger.SetLevel(level)

	log.SetDefault(logger)
	return logger, err
}
