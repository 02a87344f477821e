package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/manifest"
	"github.com/iotex-liquity/deployer/internal/networks"
)

// runTimeout bounds a full deployment run across all transactions.
const runTimeout = 30 * time.Minute

var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the PUSD protocol and persist the deployment manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting deploy command. Validating config")

		if err := configs.Values.Validate(); err != nil {
			return err
		}

		return run(cmd)
	},
}

func init() {
	CMD.Flags().String("network", string(configs.NetworkNameDev), "target network (mainnet, testnet, dev)")
	CMD.Flags().String("channel", "", "deployment channel namespace")
	CMD.Flags().String("gas-price", "", "gas price in Gwei (decimal); omit to use the node's suggestion")
	CMD.Flags().Bool("use-real-price-feed", false, "wire the PriceFeed to real oracles (default: true on mainnet only)")
	CMD.Flags().Bool("create-uniswap-pair", false, "create the PUSD/WIOTX pair on the DEX factory")

	if err := viper.BindPFlag("channel", CMD.Flags().Lookup("channel")); err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command) error {
	cfg := configs.Values

	networkFlag, err := cmd.Flags().GetString("network")
	if err != nil {
		return err
	}
	gasPrice, err := cmd.Flags().GetString("gas-price")
	if err != nil {
		return err
	}

	params := Params{
		Network:           configs.NetworkName(networkFlag),
		Channel:           cfg.Channel,
		GasPrice:          gasPrice,
		UseRealPriceFeed:  boolFlagIfSet(cmd, "use-real-price-feed"),
		CreateUniswapPair: boolFlagIfSet(cmd, "create-uniswap-pair"),
	}

	registry, err := networks.NewRegistry(cfg)
	if err != nil {
		return err
	}

	network, err := registry.Lookup(params.Network)
	if err != nil {
		return err
	}

	source, err := artifacts.Select(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	client, err := chain.Dial(ctx, network.RPCURL, network.Deployer())
	if err != nil {
		return err
	}
	defer client.Close()

	if client.ChainID() != network.ChainID {
		return fmt.Errorf("rpc %s reports chain ID %d, config expects %d for %s", network.RPCURL, client.ChainID(), network.ChainID, network.Name)
	}

	orchestrator := NewOrchestrator(
		source,
		NewProtocolDeployer(client, source),
		NewOracleWiring(client, source),
		manifest.NewWriter(cfg.DeploymentsDir),
	)

	record, err := orchestrator.Deploy(ctx, network, params)
	if err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}

	// Manifests are on disk already; stdout gets the record for piping.
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

// boolFlagIfSet returns nil when the flag was not passed, preserving the
// tri-state the defaulting pipeline needs.
func boolFlagIfSet(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil
	}
	return &value
}
