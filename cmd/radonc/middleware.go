package main

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"radon-engine/pkg/config"
)

var (
	appConfig *config.Config
	initOnce  sync.Once
	initErr   error
)

// initMiddleware loads .env, sets the logging level, and loads the YAML
// configuration exactly once per process, before any subcommand runs.
func initMiddleware(cmd *cobra.Command, _ []string) error {
	initOnce.Do(func() {
		_ = godotenv.Load()

		lvl := os.Getenv("RADON_LOG_LEVEL")
		if lvl == "" {
			lvl = "info"
		}
		lv, err := logrus.ParseLevel(lvl)
		if err != nil {
			initErr = err
			return
		}
		logrus.SetLevel(lv)

		cfg, err := config.LoadFromEnv()
		if err != nil {
			initErr = err
			return
		}
		appConfig = cfg
	})
	return initErr
}
