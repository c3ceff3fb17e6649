package config

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SetupLogging configures logrus and, when a DSN is present, Sentry
func SetupLogging() error {
	level, err := logrus.ParseLevel(AppConfig.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if AppConfig.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if AppConfig.Sentry.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         AppConfig.Sentry.DSN,
		Environment: AppConfig.App.Environment,
	}); err != nil {
		return fmt.Errorf("failed to initialise sentry: %w", err)
	}
	return nil
}

// FlushSentry waits for buffered events before shutdown
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
