package utils

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerInstallsGlobal(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Encoding: "json", ServiceName: "bents-api"})
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}

	if Logger() != logger {
		t.Fatalf("expected Logger to return the installed logger")
	}
	if zap.L() != logger {
		t.Fatalf("expected zap global to be replaced")
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "verbose"})
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}

	if logger.Core().Enabled(zap.DebugLevel) || !logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected unknown level to fall back to info")
	}
}
