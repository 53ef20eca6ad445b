package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nestlink/server/config"
)

var (
	cfg    *config.Config
	logger *logrus.Logger

	logLevel string
)

func Execute() error {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Nestlink property rental backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			cfg = loaded
			logger = newLogger(cfg.Log.Level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	serve := serveCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, catalogCmd(), askCmd())

	if err := root.Execute(); err != nil {
		if logger == nil {
			logger = newLogger("info")
		}
		logger.WithError(err).Error("Command failed")
		return err
	}
	return nil
}

func newLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		l.WithField("level", level).Warn("Unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}
