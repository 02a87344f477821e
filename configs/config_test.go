package configs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Channel:            "ci",
		DeployerPrivateKey: "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
		ArtifactsDir:       "artifacts",
		DeploymentsDir:     "deployments",
		Networks: map[NetworkName]Network{
			NetworkNameMainnet: {RPCURL: "https://babel-api.mainnet.iotex.io", ChainID: 4689},
			NetworkNameTestnet: {RPCURL: "https://babel-api.testnet.iotex.io", ChainID: 4690},
			NetworkNameDev:     {RPCURL: "http://localhost:8545", ChainID: 4691, Accounts: 10},
		},
	}
}

func TestDefaultConfigIsComplete(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	require.Equal(t, 4689, cfg.Networks[NetworkNameMainnet].ChainID)
	require.Equal(t, 4690, cfg.Networks[NetworkNameTestnet].ChainID)
	require.Equal(t, 4691, cfg.Networks[NetworkNameDev].ChainID)
	require.Equal(t, 10, cfg.Networks[NetworkNameDev].Accounts)
	require.NotEmpty(t, cfg.Localnet.ContainerName)
	require.NotZero(t, cfg.Localnet.Port)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Channel = ""
	cfg.DeployerPrivateKey = ""
	delete(cfg.Networks, NetworkNameTestnet)

	err := cfg.Validate()
	require.ErrorContains(t, err, "channel is required")
	require.ErrorContains(t, err, "deployer-private-key is required")
	require.ErrorContains(t, err, "networks.testnet is required")
}

func TestValidateLiveRequiresBundle(t *testing.T) {
	cfg := validConfig()
	cfg.Live = true

	require.ErrorContains(t, cfg.Validate(), "live-bundle is required")

	cfg.LiveBundle = "bundle.json"
	require.NoError(t, cfg.Validate())
}

func TestValidateDevAccountsFloor(t *testing.T) {
	cfg := validConfig()
	dev := cfg.Networks[NetworkNameDev]
	dev.Accounts = 1
	cfg.Networks[NetworkNameDev] = dev

	require.ErrorContains(t, cfg.Validate(), "networks.dev.accounts")
}
