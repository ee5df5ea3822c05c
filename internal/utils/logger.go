package utils

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	loggerMu     sync.Mutex
)

// NewLogger builds the process logger from cfg and installs it as the zap global.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "json" {
		encoding = "console"
	}

	var encoderCfg zapcore.EncoderConfig
	if encoding == "console" {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "time"
		encoderCfg.MessageKey = "msg"
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.Development,
	}

	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		zapCfg.InitialFields = map[string]interface{}{"service": name}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	replaceGlobal(logger)

	return logger, nil
}

// Logger returns the installed logger, falling back to a production logger.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if globalLogger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		globalLogger = logger
		zap.ReplaceGlobals(logger)
	}
	return globalLogger
}

func replaceGlobal(logger *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	zap.ReplaceGlobals(logger)
	globalLogger = logger
}
