package configs

import (
	"errors"
	"fmt"
)

var Values Config

type (
	NetworkName string

	Config struct {
		Channel            string                  `mapstructure:"channel"`
		Live               bool                    `mapstructure:"live"`
		DeployerPrivateKey string                  `mapstructure:"deployer-private-key"`
		ArtifactsDir       string                  `mapstructure:"artifacts-dir"`
		LiveBundle         string                  `mapstructure:"live-bundle"`
		DeploymentsDir     string                  `mapstructure:"deployments-dir"`
		Networks           map[NetworkName]Network `mapstructure:"networks"`
		Localnet           Localnet                `mapstructure:"localnet"`
	}

	Network struct {
		RPCURL   string `mapstructure:"rpc-url"`
		ChainID  int    `mapstructure:"chain-id"`
		Accounts int    `mapstructure:"accounts"`
	}

	Localnet struct {
		Port          int    `mapstructure:"port"`
		ContainerName string `mapstructure:"container-name"`
		BalanceIOTX   int    `mapstructure:"balance-iotx"`
	}
)

const (
	NetworkNameMainnet NetworkName = "mainnet"
	NetworkNameTestnet NetworkName = "testnet"
	NetworkNameDev     NetworkName = "dev"
)

func (c *Config) Validate() error {
	var errs []error

	if c.Channel == "" {
		errs = append(errs, errors.New("channel is required"))
	}
	if c.DeployerPrivateKey == "" {
		errs = append(errs, errors.New("deployer-private-key is required"))
	}
	if c.DeploymentsDir == "" {
		errs = append(errs, errors.New("deployments-dir is required"))
	}
	if c.Live && c.LiveBundle == "" {
		errs = append(errs, errors.New("live-bundle is required when live is set"))
	}
	if !c.Live && c.ArtifactsDir == "" {
		errs = append(errs, errors.New("artifacts-dir is required when live is not set"))
	}

	requiredNetworks := []NetworkName{NetworkNameMainnet, NetworkNameTestnet, NetworkNameDev}
	for _, name := range requiredNetworks {
		network, exists := c.Networks[name]
		if !exists {
			errs = append(errs, fmt.Errorf("networks.%s is required", name))
			continue
		}
		if network.RPCURL == "" {
			errs = append(errs, fmt.Errorf("networks.%s.rpc-url is required", name))
		}
		if network.ChainID == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.chain-id is required", name))
		}
	}

	if dev, exists := c.Networks[NetworkNameDev]; exists && dev.Accounts < 2 {
		errs = append(errs, errors.New("networks.dev.accounts must be at least 2"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
