package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/deploy"
	"github.com/iotex-liquity/deployer/internal/localnet"
	"github.com/iotex-liquity/deployer/internal/logger"
)

const appName = "deployer"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "CLI for deploying the PUSD protocol to IoTeX networks",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelDebug)

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(execPath))
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// Environment can stand in for the config file entirely.
		bindEnv := map[string]string{
			"channel":              "DEPLOY_CHANNEL",
			"deployer-private-key": "DEPLOYER_PRIVATE_KEY",
			"live":                 "LIVE",
		}
		for key, env := range bindEnv {
			if err := viper.BindEnv(key, env); err != nil {
				return err
			}
		}

		defaults, err := configs.DefaultConfig()
		if err != nil {
			return err
		}
		configs.Values = defaults
		// The channel flag is bound into viper; without this the flag's empty
		// default would shadow the embedded one.
		viper.SetDefault("channel", defaults.Channel)

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				slog.Debug("no config file found, using embedded defaults, env and flags")
			} else {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		return nil
	},
}

func main() {
	rootCmd.AddCommand(deploy.CMD)
	rootCmd.AddCommand(localnet.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
