package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/logger"
	"github.com/iotex-liquity/deployer/internal/manifest"
	"github.com/iotex-liquity/deployer/internal/networks"
)

// Orchestrator runs one deployment end to end: parameter resolution, the
// protocol deployment, conditional oracle wiring, version stamping, and
// manifest persistence. It holds no mutable state between runs.
type Orchestrator struct {
	source    artifacts.Source
	core      CoreDeployer
	oracles   OracleWirer
	manifests *manifest.Writer
	logger    *slog.Logger
}

func NewOrchestrator(source artifacts.Source, core CoreDeployer, oracles OracleWirer, manifests *manifest.Writer) *Orchestrator {
	return &Orchestrator{
		source:    source,
		core:      core,
		oracles:   oracles,
		manifests: manifests,
		logger:    logger.Named("orchestrator"),
	}
}

// Deploy validates the requested options against the network's capabilities,
// deploys and wires the protocol, and persists the manifest. Any failure
// aborts the run; there are no retries. If oracle wiring fails after the
// protocol deployment succeeded, the record is still persisted with
// OracleStatus "pending" so the confirmed addresses are not lost.
func (o *Orchestrator) Deploy(ctx context.Context, network networks.Network, params Params) (*manifest.Record, error) {
	params.Network = network.Name

	res, err := resolveParams(params)
	if err != nil {
		return nil, err
	}

	o.logger.
		With("network", network.Name).
		With("channel", params.Channel).
		With("use_real_price_feed", res.useRealPriceFeed).
		With("create_pair", res.createPair).
		With("version", o.source.Version()).
		Info("starting deployment")

	record, err := o.core.DeployProtocol(ctx, CoreInput{
		UseTestPriceFeed: !res.useRealPriceFeed,
		IsDev:            network.Name == configs.NetworkNameDev,
		CreatePair:       res.createPair,
		WIOTX:            res.wiotx,
		DEXFactory:       res.dexFactory,
		Overrides:        res.overrides,
	})
	if err != nil {
		return nil, err
	}

	record.Network = string(network.Name)
	record.Version = o.source.Version()
	record.GasPrice = res.overrides.GasPriceHex()

	if res.useRealPriceFeed {
		if err := assertRealPriceFeed(record); err != nil {
			return nil, err
		}

		if err := o.oracles.Wire(ctx, record, network.Name, res.overrides); err != nil {
			record.OracleStatus = manifest.OracleStatusPending
			if _, persistErr := o.manifests.Persist(params.Channel, string(network.Name), record); persistErr != nil {
				return nil, errors.Join(err, persistErr)
			}
			return nil, fmt.Errorf("oracle wiring failed (manifest persisted with pending oracle status): %w", err)
		}
		record.OracleStatus = manifest.OracleStatusWired
	}

	path, err := o.manifests.Persist(params.Channel, string(network.Name), record)
	if err != nil {
		return nil, err
	}

	if summaryPath, err := o.manifests.WriteSummary(params.Channel, string(network.Name), network.RPCURL, record, o.contractABIs(record)); err != nil {
		o.logger.With("err", err.Error()).Warn("failed to write deployment summary")
	} else {
		o.logger.With("path", summaryPath).Info("deployment summary written")
	}

	o.logger.With("path", path).Info("deployment manifest written")

	return record, nil
}

// assertRealPriceFeed is an internal-consistency check: a run that asked for
// the real price feed must never have deployed the test variant.
func assertRealPriceFeed(record *manifest.Record) error {
	if _, ok := record.Contracts[string(artifacts.ContractNamePriceFeedTestnet)]; ok {
		return fmt.Errorf("internal inconsistency: real price feed requested but %s was deployed", artifacts.ContractNamePriceFeedTestnet)
	}
	if _, ok := record.Contracts[string(artifacts.ContractNamePriceFeed)]; !ok {
		return fmt.Errorf("internal inconsistency: real price feed requested but %s is missing from the record", artifacts.ContractNamePriceFeed)
	}
	return nil
}

// contractABIs collects raw ABIs for the summary; contracts without an
// artifact (the DEX pair) are listed address-only.
func (o *Orchestrator) contractABIs(record *manifest.Record) map[string]string {
	abis := make(map[string]string, len(record.Contracts))
	for name := range record.Contracts {
		artifact, err := o.source.Artifact(artifacts.ContractName(name))
		if err != nil {
			continue
		}
		abis[name] = artifact.RawABI
	}
	return abis
}
