package localnet

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/localnet/docker"
)

var CMD = &cobra.Command{
	Use:   "localnet",
	Short: "Manage the local dev chain the dev network targets",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the dev chain with the dev account set funded",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting localnet up")

		if err := configs.Values.Validate(); err != nil {
			return err
		}

		dockerClient, err := docker.New()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w", err)
		}
		defer dockerClient.Close()

		return NewService(dockerClient).Up(cmd.Context(), configs.Values)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the dev chain container",
	RunE: func(cmd *cobra.Command, args []string) error {
		dockerClient, err := docker.New()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w", err)
		}
		defer dockerClient.Close()

		return NewService(dockerClient).Down(cmd.Context(), configs.Values)
	},
}

func init() {
	CMD.AddCommand(upCmd)
	CMD.AddCommand(downCmd)
}
