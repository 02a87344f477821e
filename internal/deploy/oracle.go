package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/logger"
	"github.com/iotex-liquity/deployer/internal/manifest"
	"github.com/iotex-liquity/deployer/internal/networks"
)

type (
	// OracleWirer binds the deployed PriceFeed to the network's oracles.
	OracleWirer interface {
		Wire(ctx context.Context, record *manifest.Record, network configs.NetworkName, overrides chain.Overrides) error
	}

	// OracleWiring is the production OracleWirer: it deploys the adapter for
	// the fallback oracle and points the PriceFeed at both sources.
	OracleWiring struct {
		runner txRunner
		source artifacts.Source
		logger *slog.Logger
	}
)

func NewOracleWiring(runner txRunner, source artifacts.Source) *OracleWiring {
	return &OracleWiring{
		runner: runner,
		source: source,
		logger: logger.Named("oracle_wiring"),
	}
}

// Wire deploys the OracleAdapter (constructor-bound to the fallback oracle)
// and, only after that deployment is confirmed, calls
// PriceFeed.setAddresses(primary, adapter). The adapter address in the
// setAddresses call is the one just mined; the record is extended with it.
func (w *OracleWiring) Wire(ctx context.Context, record *manifest.Record, network configs.NetworkName, overrides chain.Overrides) error {
	pair := networks.OracleAddresses(network)

	adapterArtifact, err := w.source.Artifact(artifacts.ContractNameOracleAdapter)
	if err != nil {
		return err
	}

	adapterAddr, txHash, err := w.runner.Deploy(ctx, string(artifacts.ContractNameOracleAdapter), adapterArtifact, overrides, pair.FallbackOracle)
	if err != nil {
		return err
	}
	record.Contracts[string(artifacts.ContractNameOracleAdapter)] = manifest.ContractRecord{
		Address: adapterAddr.Hex(),
		TxHash:  txHash.Hex(),
	}

	feedRecord, ok := record.Contracts[string(artifacts.ContractNamePriceFeed)]
	if !ok {
		return fmt.Errorf("deployment record has no %s to wire", artifacts.ContractNamePriceFeed)
	}

	feedArtifact, err := w.source.Artifact(artifacts.ContractNamePriceFeed)
	if err != nil {
		return err
	}

	w.logger.
		With("price_oracle", pair.PriceOracle.Hex()).
		With("adapter", adapterAddr.Hex()).
		Info("binding price feed to oracles")

	if _, err := w.runner.Transact(ctx, string(artifacts.ContractNamePriceFeed), common.HexToAddress(feedRecord.Address), feedArtifact.ABI, overrides, "setAddresses", pair.PriceOracle, adapterAddr); err != nil {
		return err
	}

	return nil
}
