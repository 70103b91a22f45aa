package logger_test

import (
	"errors"

	"github.com/wonny/rentix/backend/pkg/config"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Engine started")
	log.Infof("Recomputed %d contracts", 42)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).WithComponent("resolver")

	log.WithFields(map[string]interface{}{
		"series":         "cpi",
		"base_period":    "2024-01",
		"current_period": "2025-01",
	}).Info("Ratio resolved")

	log.WithError(errors.New("missing index data for period 2025-02")).
		Error("Cannot compute adjusted rent")
}
