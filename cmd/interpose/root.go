package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jingkaihe/interpose/internal/errx"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "interpose",
	Short: "Assemble types from a manifest and route their members through interceptors",
	Long: `interpose loads a YAML manifest of types, members and bindings, defines
each type body in order and applies annotations and decorators to it.

Eager bindings (extend: annotation, decorator) need the member and the
interceptor defined before the binding. Lazy bindings (extend:
lazy_annotation, lazy_decorator) are applied when the type body completes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}

		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return errx.Wrap(ErrInitLogger, err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() error {
	viper.SetEnvPrefix("INTERPOSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return errx.Wrap(ErrReadConfig, err)
	}
	return nil
}
