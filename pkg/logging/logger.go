package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// NewLogger builds the process logger from log_settings. Output always goes
// to stdout and, when log_file is set, to a rotated file as well.
func NewLogger(cfg *config.LogSettings) (*logrus.Logger, error) {
	logger := logrus.New()

	logLevel := logrus.InfoLevel
	if cfg.LogLevel != nil && *cfg.LogLevel != "" {
		lv, err := logrus.ParseLevel(strings.ToLower(*cfg.LogLevel))
		if err != nil {
			return nil, err
		}
		logLevel = lv
	}
	logger.SetLevel(logLevel)

	var output io.Writer = os.Stdout
	if cfg.LogFile != "" {
		fileLogger := &timberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		output = io.MultiWriter(os.Stdout, fileLogger)
	}
	logger.SetOutput(output)

	var underlying logrus.Formatter
	addSpace := false
	switch strings.ToLower(cfg.Format) {
	case "json":
		underlying = &logrus.JSONFormatter{
			CallerPrettyfier: emptyCaller,
		}
	default:
		underlying = &logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: emptyCaller,
			ForceColors:      cfg.LogFile == "",
		}
		addSpace = true
	}
	logger.SetFormatter(&SourceFormatter{
		Underlying: underlying,
		Redact:     CredentialFields,
		AddSpace:   addSpace,
	})
	logger.SetReportCaller(true)

	if cfg.LogFile != "" {
		logger.Infof("file logging enabled, writing to %s", cfg.LogFile)
	}

	return logger, nil
}

// the source formatter already emits the caller
func emptyCaller(*runtime.Frame) (string, string) {
	return "", ""
}
